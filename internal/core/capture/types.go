package capture

import (
	"context"
	"image"
)

// State is a capture loop state
type State uint8

// Idle is the only initial state; every Acquire ends in a terminal state
const (
	Idle State = iota
	Streaming
	Saved
	Cancelled
	DeviceFailure
	Timeout
)

var stateNames = [...]string{"idle", "streaming", "saved", "cancelled", "device_failure", "timeout"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether s ends the loop
func (s State) Terminal() bool { return s >= Saved }

// Signal is the operator's answer for one frame
type Signal uint8

// SignalNone keeps streaming
const (
	SignalNone Signal = iota
	SignalConfirm
	SignalCancel
)

// Purpose tells the sink where a sample belongs
type Purpose uint8

// PurposeEnroll samples become reference images, PurposeVerify samples are transient
const (
	PurposeEnroll Purpose = iota
	PurposeVerify
)

func (p Purpose) String() string {
	if p == PurposeVerify {
		return "verify"
	}
	return "enroll"
}

// Request names the participant a capture is for
type Request struct {
	ParticipantID string
	Class         string
	Purpose       Purpose
}

// Frame is one detector pass over a device frame
type Frame struct {
	Image image.Image
	Faces []image.Rectangle
}

// Sample is a persisted grayscale face crop
type Sample struct {
	Image  *image.Gray
	Handle string
	Box    image.Rectangle
}

// Device is an opened camera; ReadFrame reports false on read failure
type Device interface {
	ReadFrame() (image.Image, bool)
	Close() error
}

// DeviceOpener acquires the camera for one capture
type DeviceOpener interface {
	Open(ctx context.Context) (Device, error)
}

// Detector returns zero or more face regions in img
type Detector interface {
	Detect(img image.Image) []image.Rectangle
}

// Operator shows frames with their regions and reports the operator's signal
type Operator interface {
	Show(f Frame)
	Poll() Signal
}

// Sink persists a confirmed crop and returns its handle
type Sink interface {
	Save(ctx context.Context, req Request, img *image.Gray) (handle string, err error)
}

// Transition is reported to the observer on every state change
type Transition struct {
	Request Request
	From    State
	To      State
	Frames  int
}

// Observer receives transitions synchronously
type Observer func(Transition)

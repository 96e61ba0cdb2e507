// Package camera supplies the capture device, face detector and operator
//
// The OpenCV backed implementation is compiled with the gocv build tag.
// Without it Open returns a rig whose device never opens, so every capture
// ends in DeviceFailure and the rest of the service keeps working.
package camera

import (
	"image"
	"sync"

	"ballotgate/internal/core/capture"
	"ballotgate/internal/platform/config"
)

// Haar cascade parameters
const (
	ScaleFactor  = 1.1
	MinNeighbors = 5
	MinFace      = 100
)

// Operator kinds
const (
	OperatorWindow = "window"
	OperatorAuto   = "auto"
)

// Config selects the camera and how frames are confirmed
type Config struct {
	Device   int
	Cascade  string
	Window   string
	Operator string
	// AutoFrames is how many consecutive single face frames the auto operator waits for
	AutoFrames int
}

// FromConfig reads CAPTURE_DEVICE, CAPTURE_CASCADE, CAPTURE_WINDOW, CAPTURE_OPERATOR and CAPTURE_AUTO_FRAMES
func FromConfig(cfg config.Conf) Config {
	return Config{
		Device:     cfg.MayInt("DEVICE", 0),
		Cascade:    cfg.MayString("CASCADE", "haarcascade_frontalface_default.xml"),
		Window:     cfg.MayString("WINDOW", "Capture Face - press s to save, q to quit"),
		Operator:   cfg.MayEnum("OPERATOR", OperatorWindow, OperatorWindow, OperatorAuto),
		AutoFrames: cfg.MayInt("AUTO_FRAMES", 5),
	}
}

// Rig bundles the collaborators a capture.Controller needs
type Rig struct {
	Opener   capture.DeviceOpener
	Detector capture.Detector
	Operator capture.Operator

	closers []func() error
	once    sync.Once
}

// Close releases the detector model and any window
func (r *Rig) Close() error {
	var first error
	r.once.Do(func() {
		for i := len(r.closers) - 1; i >= 0; i-- {
			if err := r.closers[i](); err != nil && first == nil {
				first = err
			}
		}
	})
	return first
}

// KeySignal maps a key code from the preview window to a capture signal
func KeySignal(key int) capture.Signal {
	switch key & 0xff {
	case 's', 'S':
		return capture.SignalConfirm
	case 'q', 'Q', 27:
		return capture.SignalCancel
	default:
		return capture.SignalNone
	}
}

// Auto confirms once the same single face has been in view for N frames
// It suits unattended kiosks and smoke tests
type Auto struct {
	N int

	mu     sync.Mutex
	streak int
	last   image.Rectangle
}

// NewAuto returns an Auto operator; n below one means one frame
func NewAuto(n int) *Auto {
	if n < 1 {
		n = 1
	}
	return &Auto{N: n}
}

// Show counts consecutive frames holding exactly one face
func (a *Auto) Show(f capture.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(f.Faces) != 1 {
		a.streak = 0
		return
	}
	if a.streak > 0 && !overlaps(a.last, f.Faces[0]) {
		a.streak = 0
	}
	a.last = f.Faces[0]
	a.streak++
}

// Poll confirms when the streak is long enough and resets it
func (a *Auto) Poll() capture.Signal {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streak >= a.N {
		a.streak = 0
		return capture.SignalConfirm
	}
	return capture.SignalNone
}

// overlaps reports whether b covers at least half of a
func overlaps(a, b image.Rectangle) bool {
	in := a.Intersect(b)
	if in.Empty() {
		return false
	}
	return 2*in.Dx()*in.Dy() >= a.Dx()*a.Dy()
}

// operatorFor returns the non window operators, nil for OperatorWindow
func operatorFor(c Config) capture.Operator {
	if c.Operator == OperatorAuto {
		return NewAuto(c.AutoFrames)
	}
	return nil
}

// Package capture runs the interactive face capture loop
//
// A Controller owns exclusive access to one camera. Each Acquire opens the
// device, streams frames through a Detector to an Operator and waits for a
// confirm with exactly one face in view. The crop is taken from the grayscale
// frame, handed to a Sink and returned. The device is closed on every exit.
//
//	Idle -> Streaming -> Saved | Cancelled | DeviceFailure | Timeout
package capture

import (
	"context"
	"errors"
	"time"

	"ballotgate/internal/core/imaging"
	"ballotgate/internal/platform/logger"
)

// Controller serializes captures on one device
type Controller struct {
	opener DeviceOpener
	det    Detector
	op     Operator
	sink   Sink
	opt    Options

	// sem is a single slot so waiting for the device honors ctx
	sem chan struct{}
}

// New builds a Controller; all collaborators are required
func New(opener DeviceOpener, det Detector, op Operator, sink Sink, opt Options) *Controller {
	if opener == nil || det == nil || op == nil || sink == nil {
		panic("capture: nil collaborator")
	}
	if opt.now == nil {
		opt.now = time.Now
	}
	return &Controller{
		opener: opener,
		det:    det,
		op:     op,
		sink:   sink,
		opt:    opt,
		sem:    make(chan struct{}, 1),
	}
}

// run is the per call loop state
type run struct {
	c      *Controller
	req    Request
	state  State
	frames int
}

func (r *run) to(s State) {
	from := r.state
	r.state = s
	if r.c.opt.Observer != nil {
		r.c.opt.Observer(Transition{Request: r.req, From: from, To: s, Frames: r.frames})
	}
}

func (r *run) fail(s State, sentinel, cause error) error {
	r.to(s)
	return &Error{State: s, Err: sentinel, Cause: cause}
}

// Acquire runs one capture for req and blocks until a terminal state
// ctx cancellation or expiry ends the loop in Timeout
func (c *Controller) Acquire(ctx context.Context, req Request) (Sample, error) {
	r := &run{c: c, req: req, state: Idle}
	log := logger.C(ctx).With().Str("component", "capture").Str("purpose", req.Purpose.String()).Logger()

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return Sample{}, r.fail(Timeout, ErrTimeout, ctx.Err())
	}
	defer func() { <-c.sem }()

	var deadline time.Time
	if c.opt.MaxWait > 0 {
		deadline = c.opt.now().Add(c.opt.MaxWait)
	}

	dev, err := c.opener.Open(ctx)
	if err != nil {
		log.Error().Err(err).Msg("device open failed")
		return Sample{}, r.fail(DeviceFailure, ErrDeviceFailure, err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Warn().Err(err).Msg("device close failed")
		}
	}()

	r.to(Streaming)
	for {
		if err := ctx.Err(); err != nil {
			log.Info().Int("frames", r.frames).Msg("capture aborted by context")
			return Sample{}, r.fail(Timeout, ErrTimeout, err)
		}
		if !deadline.IsZero() && !c.opt.now().Before(deadline) {
			log.Info().Int("frames", r.frames).Dur("max_wait", c.opt.MaxWait).Msg("capture timed out")
			return Sample{}, r.fail(Timeout, ErrTimeout, nil)
		}
		if c.opt.MaxFrames > 0 && r.frames >= c.opt.MaxFrames {
			log.Info().Int("frames", r.frames).Msg("capture frame budget spent")
			return Sample{}, r.fail(Timeout, ErrTimeout, nil)
		}

		img, ok := dev.ReadFrame()
		if !ok || imaging.Empty(img) {
			log.Error().Int("frames", r.frames).Msg("device read failed")
			return Sample{}, r.fail(DeviceFailure, ErrDeviceFailure, nil)
		}
		r.frames++

		f := Frame{Image: img, Faces: c.det.Detect(img)}
		c.op.Show(f)

		switch c.op.Poll() {
		case SignalCancel:
			log.Info().Int("frames", r.frames).Msg("capture cancelled")
			return Sample{}, r.fail(Cancelled, ErrCancelled, nil)
		case SignalConfirm:
			if len(f.Faces) != 1 {
				log.Debug().Int("faces", len(f.Faces)).Msg("confirm ignored")
				continue
			}
			crop, ok := imaging.Crop(imaging.Gray(img), f.Faces[0])
			if !ok {
				log.Debug().Stringer("box", f.Faces[0]).Msg("confirm ignored, box outside frame")
				continue
			}
			handle, err := c.sink.Save(ctx, req, crop)
			if err != nil {
				log.Error().Err(err).Msg("sample save failed")
				return Sample{}, r.fail(DeviceFailure, ErrDeviceFailure, err)
			}
			r.to(Saved)
			log.Info().Int("frames", r.frames).Str("handle", handle).Msg("sample saved")
			return Sample{Image: crop, Handle: handle, Box: f.Faces[0]}, nil
		}
	}
}

// IsCancelled reports whether err ended a capture on the operator's cancel
func IsCancelled(err error) bool { return errors.Is(err, ErrCancelled) }

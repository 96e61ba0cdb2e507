package capture

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ballotgate/internal/core/imaging"
	"ballotgate/internal/platform/testkit"
)

type fakeDevice struct {
	frame  image.Image
	failAt int // read number that fails, 0 never
	reads  int
	closed atomic.Bool
}

func (d *fakeDevice) ReadFrame() (image.Image, bool) {
	d.reads++
	if d.failAt > 0 && d.reads >= d.failAt {
		return nil, false
	}
	return d.frame, true
}

func (d *fakeDevice) Close() error {
	d.closed.Store(true)
	return nil
}

type fakeOpener struct {
	dev    *fakeDevice
	err    error
	opens  atomic.Int32
	active atomic.Int32
	peak   atomic.Int32
}

func (o *fakeOpener) Open(context.Context) (Device, error) {
	o.opens.Add(1)
	if o.err != nil {
		return nil, o.err
	}
	n := o.active.Add(1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return &trackedDevice{fakeDevice: o.dev, o: o}, nil
}

type trackedDevice struct {
	*fakeDevice
	o *fakeOpener
}

func (d *trackedDevice) Close() error {
	d.o.active.Add(-1)
	return d.fakeDevice.Close()
}

// scriptDetector returns faces[i] for the ith call and the last entry afterwards
type scriptDetector struct {
	mu    sync.Mutex
	faces [][]image.Rectangle
	calls int
}

func (d *scriptDetector) Detect(image.Image) []image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.calls
	d.calls++
	if len(d.faces) == 0 {
		return nil
	}
	if i >= len(d.faces) {
		i = len(d.faces) - 1
	}
	return d.faces[i]
}

func one(r image.Rectangle) []image.Rectangle { return []image.Rectangle{r} }

// scriptOperator answers signals[i] for the ith poll and SignalNone afterwards
type scriptOperator struct {
	mu      sync.Mutex
	signals []Signal
	polls   int
	shown   int
}

func (o *scriptOperator) Show(Frame) {
	o.mu.Lock()
	o.shown++
	o.mu.Unlock()
}

func (o *scriptOperator) Poll() Signal {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.polls
	o.polls++
	if i < len(o.signals) {
		return o.signals[i]
	}
	return SignalNone
}

type memSink struct {
	mu    sync.Mutex
	err   error
	saved []Request
	imgs  []*image.Gray
}

func (s *memSink) Save(_ context.Context, req Request, img *image.Gray) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, req)
	s.imgs = append(s.imgs, img)
	return req.Class + "/" + req.ParticipantID + ".png", nil
}

type rig struct {
	dev  *fakeDevice
	open *fakeOpener
	det  *scriptDetector
	op   *scriptOperator
	sink *memSink
	seen []Transition
}

func newRig(faces [][]image.Rectangle, signals ...Signal) *rig {
	dev := &fakeDevice{frame: imaging.Fill(320, 240, 90)}
	return &rig{
		dev:  dev,
		open: &fakeOpener{dev: dev},
		det:  &scriptDetector{faces: faces},
		op:   &scriptOperator{signals: signals},
		sink: &memSink{},
	}
}

func (r *rig) controller(opt Options) *Controller {
	opt.Observer = func(t Transition) { r.seen = append(r.seen, t) }
	return New(r.open, r.det, r.op, r.sink, opt)
}

func (r *rig) states() []State {
	out := make([]State, 0, len(r.seen))
	for _, t := range r.seen {
		out = append(out, t.To)
	}
	return out
}

var req = Request{ParticipantID: "V-1", Class: "elector", Purpose: PurposeVerify}

func sameStates(t *testing.T, got []State, want ...State) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
}

func TestAcquire_ConfirmWithOneFaceSaves(t *testing.T) {
	box := image.Rect(40, 30, 140, 150)
	r := newRig([][]image.Rectangle{one(box)}, SignalNone, SignalConfirm)

	s, err := r.controller(Options{}).Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s.Handle != "elector/V-1.png" || s.Box != box {
		t.Fatalf("sample = %+v", s)
	}
	if s.Image.Bounds().Dx() != 100 || s.Image.Bounds().Dy() != 120 {
		t.Fatalf("crop bounds = %v", s.Image.Bounds())
	}
	if len(r.sink.saved) != 1 || r.sink.saved[0] != req {
		t.Fatalf("sink saved %+v", r.sink.saved)
	}
	if !r.dev.closed.Load() {
		t.Fatal("device left open")
	}
	sameStates(t, r.states(), Streaming, Saved)
	if r.seen[1].Frames != 2 {
		t.Fatalf("frames at save = %d", r.seen[1].Frames)
	}
}

func TestAcquire_ConfirmNeedsExactlyOneFace(t *testing.T) {
	two := []image.Rectangle{image.Rect(0, 0, 50, 50), image.Rect(60, 60, 110, 110)}
	r := newRig([][]image.Rectangle{nil, two, nil}, SignalConfirm, SignalConfirm, SignalCancel)

	_, err := r.controller(Options{}).Acquire(context.Background(), req)
	testkit.MustErrIs(t, err, ErrCancelled)
	if len(r.sink.saved) != 0 {
		t.Fatalf("saved %d samples", len(r.sink.saved))
	}
	if r.op.shown != 3 {
		t.Fatalf("shown %d frames", r.op.shown)
	}
}

func TestAcquire_ConfirmOutsideFrameIgnored(t *testing.T) {
	off := image.Rect(1000, 1000, 1100, 1100)
	r := newRig([][]image.Rectangle{one(off)}, SignalConfirm, SignalCancel)

	_, err := r.controller(Options{}).Acquire(context.Background(), req)
	testkit.MustErrIs(t, err, ErrCancelled)
	if len(r.sink.saved) != 0 {
		t.Fatal("off frame box must not be saved")
	}
}

func TestAcquire_CropClippedToFrame(t *testing.T) {
	r := newRig([][]image.Rectangle{one(image.Rect(300, 200, 400, 300))}, SignalConfirm)

	s, err := r.controller(Options{}).Acquire(context.Background(), req)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s.Image.Bounds().Dx() != 20 || s.Image.Bounds().Dy() != 40 {
		t.Fatalf("clipped bounds = %v", s.Image.Bounds())
	}
}

func TestAcquire_TerminalFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		setup func(r *rig) Options
		state State
		is    []error
	}{
		{
			name:  "cancel",
			setup: func(r *rig) Options { r.op.signals = []Signal{SignalCancel}; return Options{} },
			state: Cancelled,
			is:    []error{ErrCancelled},
		},
		{
			name:  "open",
			setup: func(r *rig) Options { r.open.err = boom; return Options{} },
			state: DeviceFailure,
			is:    []error{ErrDeviceFailure, boom},
		},
		{
			name:  "read",
			setup: func(r *rig) Options { r.dev.failAt = 3; return Options{} },
			state: DeviceFailure,
			is:    []error{ErrDeviceFailure},
		},
		{
			name: "save",
			setup: func(r *rig) Options {
				r.det.faces = [][]image.Rectangle{one(image.Rect(0, 0, 10, 10))}
				r.op.signals = []Signal{SignalConfirm}
				r.sink.err = boom
				return Options{}
			},
			state: DeviceFailure,
			is:    []error{ErrDeviceFailure, boom},
		},
		{
			name:  "frame budget",
			setup: func(*rig) Options { return Options{MaxFrames: 5} },
			state: Timeout,
			is:    []error{ErrTimeout},
		},
		{
			name: "wall clock",
			setup: func(*rig) Options {
				base := time.Unix(0, 0)
				n := 0
				return Options{MaxWait: time.Second, now: func() time.Time {
					n++
					return base.Add(time.Duration(n) * 300 * time.Millisecond)
				}}
			},
			state: Timeout,
			is:    []error{ErrTimeout},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(nil)
			opt := tc.setup(r)
			_, err := r.controller(opt).Acquire(context.Background(), req)
			if err == nil {
				t.Fatal("want error")
			}
			for _, target := range tc.is {
				testkit.MustErrIs(t, err, target)
			}
			if got := StateOf(err); got != tc.state {
				t.Fatalf("state = %v, want %v", got, tc.state)
			}
			if last := r.seen[len(r.seen)-1].To; last != tc.state {
				t.Fatalf("last transition = %v", last)
			}
			if r.open.active.Load() != 0 {
				t.Fatal("device left open")
			}
			if len(r.sink.saved) != 0 {
				t.Fatal("nothing should be saved")
			}
		})
	}
}

func TestAcquire_ContextEndsInTimeout(t *testing.T) {
	r := newRig(nil)
	ctx, cancel := context.WithCancel(context.Background())
	r.op.signals = nil
	c := r.controller(Options{})
	// cancel after the loop has started streaming
	c.opt.Observer = func(tr Transition) {
		r.seen = append(r.seen, tr)
		if tr.To == Streaming {
			cancel()
		}
	}

	_, err := c.Acquire(ctx, req)
	testkit.MustErrIs(t, err, ErrTimeout)
	testkit.MustErrIs(t, err, context.Canceled)
	sameStates(t, r.states(), Streaming, Timeout)
	if !r.dev.closed.Load() {
		t.Fatal("device left open")
	}
}

func TestAcquire_WaitForDeviceHonorsContext(t *testing.T) {
	r := newRig(nil)
	c := r.controller(Options{})
	c.sem <- struct{}{} // another capture holds the device

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Acquire(ctx, req)
	testkit.MustErrIs(t, err, ErrTimeout)
	testkit.MustErrIs(t, err, context.DeadlineExceeded)
	if r.open.opens.Load() != 0 {
		t.Fatal("device opened while held")
	}
}

func TestAcquire_SerializesDevice(t *testing.T) {
	r := newRig(nil)
	c := New(r.open, r.det, r.op, r.sink, Options{MaxFrames: 200})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Acquire(context.Background(), req)
		}()
	}
	wg.Wait()

	if got := r.open.opens.Load(); got != 4 {
		t.Fatalf("opens = %d", got)
	}
	if got := r.open.peak.Load(); got != 1 {
		t.Fatalf("peak concurrent devices = %d", got)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	r := newRig(nil)
	testkit.MustPanic(t, func() { New(nil, r.det, r.op, r.sink, Options{}) })
	testkit.MustPanic(t, func() { New(r.open, r.det, r.op, nil, Options{}) })
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Idle: "idle", Streaming: "streaming", Saved: "saved",
		Cancelled: "cancelled", DeviceFailure: "device_failure", Timeout: "timeout",
		State(42): "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
	if Streaming.Terminal() || !Timeout.Terminal() {
		t.Fatal("Terminal misclassifies")
	}
	if StateOf(errors.New("x")) != Idle {
		t.Fatal("foreign error must map to Idle")
	}
}

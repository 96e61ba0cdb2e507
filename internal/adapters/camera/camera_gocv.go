//go:build gocv

package camera

import (
	"context"
	"image"
	"image/color"
	"sync"

	"ballotgate/internal/core/capture"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"

	"gocv.io/x/gocv"
)

var boxColor = color.RGBA{G: 255, A: 255}

// Open loads the cascade and, for the window operator, creates the preview window
func Open(c Config) (*Rig, error) {
	log := logger.Named("camera")

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(c.Cascade) {
		_ = cascade.Close()
		return nil, perr.Unavailablef("camera: load cascade %s", c.Cascade)
	}
	r := &Rig{
		Opener:   opener{device: c.Device},
		Detector: &detector{cascade: cascade},
	}
	r.closers = append(r.closers, cascade.Close)

	if op := operatorFor(c); op != nil {
		r.Operator = op
	} else {
		w := &window{w: gocv.NewWindow(c.Window)}
		r.Operator = w
		r.closers = append(r.closers, w.w.Close)
	}
	log.Info().Int("device", c.Device).Str("cascade", c.Cascade).Str("operator", c.Operator).Msg("camera ready")
	return r, nil
}

type opener struct{ device int }

func (o opener) Open(_ context.Context) (capture.Device, error) {
	vc, err := gocv.OpenVideoCapture(o.device)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "camera: open device %d", o.device)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, perr.Unavailablef("camera: device %d not opened", o.device)
	}
	return &device{vc: vc, mat: gocv.NewMat()}, nil
}

// frame is a decoded device frame that keeps its Mat for the detector and window
// The Mat is only valid until the next ReadFrame
type frame struct {
	image.Image
	mat *gocv.Mat
}

type device struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (d *device) ReadFrame() (image.Image, bool) {
	if ok := d.vc.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, false
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return &frame{Image: img, mat: &d.mat}, true
}

func (d *device) Close() error {
	merr := d.mat.Close()
	if err := d.vc.Close(); err != nil {
		return err
	}
	return merr
}

// matOf returns the Mat behind img, converting when img did not come from a device
func matOf(img image.Image) (gocv.Mat, bool, error) {
	if f, ok := img.(*frame); ok {
		return *f.mat, false, nil
	}
	m, err := gocv.ImageToMatRGB(img)
	return m, true, err
}

type detector struct {
	mu      sync.Mutex
	cascade gocv.CascadeClassifier
}

func (d *detector) Detect(img image.Image) []image.Rectangle {
	src, owned, err := matOf(img)
	if err != nil {
		return nil
	}
	if owned {
		defer src.Close()
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cascade.DetectMultiScaleWithParams(
		gray,
		ScaleFactor,
		MinNeighbors,
		0,
		image.Pt(MinFace, MinFace),
		image.Point{},
	)
}

// window previews frames with detected boxes and reads the operator's key
type window struct {
	w *gocv.Window
}

func (w *window) Show(f capture.Frame) {
	src, owned, err := matOf(f.Image)
	if err != nil {
		return
	}
	if owned {
		defer src.Close()
	}
	view := src.Clone()
	defer view.Close()
	for _, r := range f.Faces {
		gocv.Rectangle(&view, r, boxColor, 2)
	}
	w.w.IMShow(view)
}

func (w *window) Poll() capture.Signal {
	if w.w.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		return capture.SignalCancel
	}
	return KeySignal(w.w.WaitKey(1))
}

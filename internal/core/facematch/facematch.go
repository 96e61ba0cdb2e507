// Package facematch compares two face images by raw pixel distance
//
// Both inputs are reduced to grayscale and resampled to one canonical size, then
// the per-pixel absolute differences are summed. The pair matches when the sum is
// strictly below the threshold. There is no learned embedding and no liveness
// check, so this is a weak biometric factor.
package facematch

import (
	"fmt"
	"image"

	"ballotgate/internal/core/imaging"
	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"

	xdraw "golang.org/x/image/draw"
)

// Defaults of the canonical comparison
const (
	DefaultWidth     = 100
	DefaultHeight    = 100
	DefaultThreshold = 5000
)

// Options configures the comparison
type Options struct {
	Width     int
	Height    int
	Threshold int64
}

// DefaultOptions returns 100x100 and threshold 5000
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Threshold: DefaultThreshold}
}

// FromConfig reads MATCH_WIDTH, MATCH_HEIGHT and MATCH_THRESHOLD under cfg
func FromConfig(cfg config.Conf) Options {
	return Options{
		Width:     cfg.MayInt("WIDTH", DefaultWidth),
		Height:    cfg.MayInt("HEIGHT", DefaultHeight),
		Threshold: cfg.MayInt64("THRESHOLD", DefaultThreshold),
	}
}

// Validate rejects sizes or thresholds that would make every pair mismatch
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("facematch: canonical size %dx%d must be positive", o.Width, o.Height)
	}
	if o.Threshold <= 0 {
		return fmt.Errorf("facematch: threshold %d must be positive", o.Threshold)
	}
	return nil
}

// Opener loads the image behind a sample handle
type Opener interface {
	Open(handle string) (image.Image, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(handle string) (image.Image, error)

// Open calls f
func (f OpenerFunc) Open(handle string) (image.Image, error) { return f(handle) }

// Files opens handles as filesystem paths
var Files Opener = OpenerFunc(imaging.Load)

// Matcher is safe for concurrent use
type Matcher struct {
	opt Options
}

// New returns a Matcher; invalid options fall back to the defaults
func New(opt Options) *Matcher {
	if err := opt.Validate(); err != nil {
		logger.Named("facematch").Warn().Err(err).Msg("using default match options")
		opt = DefaultOptions()
	}
	return &Matcher{opt: opt}
}

// Options returns the effective options
func (m *Matcher) Options() Options { return m.opt }

// Score returns the sum of absolute differences between the canonical forms of a and b
// ok is false when either image is nil or empty
func (m *Matcher) Score(a, b image.Image) (score int64, ok bool) {
	ca, cb := m.canonical(a), m.canonical(b)
	if ca == nil || cb == nil {
		return 0, false
	}
	for i := range ca.Pix {
		d := int64(ca.Pix[i]) - int64(cb.Pix[i])
		if d < 0 {
			d = -d
		}
		score += d
	}
	return score, true
}

// IsMatch reports whether a and b are closer than the threshold
func (m *Matcher) IsMatch(a, b image.Image) bool {
	s, ok := m.Score(a, b)
	return ok && s < m.opt.Threshold
}

// MatchHandles loads both handles through op and compares them
// any load failure is a mismatch
func (m *Matcher) MatchHandles(op Opener, ha, hb string) bool {
	a, err := op.Open(ha)
	if err != nil {
		logger.Named("facematch").Warn().Err(err).Str("handle", ha).Msg("load failed")
		return false
	}
	return m.MatchReference(op, a, hb)
}

// MatchReference compares an in-memory sample with the reference behind ref
// a reference that fails to load is a mismatch
func (m *Matcher) MatchReference(op Opener, sample image.Image, ref string) bool {
	log := logger.Named("facematch")
	b, err := op.Open(ref)
	if err != nil {
		log.Warn().Err(err).Str("handle", ref).Msg("load failed")
		return false
	}
	s, ok := m.Score(sample, b)
	match := ok && s < m.opt.Threshold
	log.Debug().Int64("score", s).Int64("threshold", m.opt.Threshold).Bool("match", match).Msg("compared")
	return match
}

// IsMatchFiles compares two image files
func (m *Matcher) IsMatchFiles(pathA, pathB string) bool {
	return m.MatchHandles(Files, pathA, pathB)
}

// canonical is the only place images are normalized to the comparison size
func (m *Matcher) canonical(img image.Image) *image.Gray {
	g := imaging.Gray(img)
	if g == nil {
		return nil
	}
	dst := image.NewGray(image.Rect(0, 0, m.opt.Width, m.opt.Height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), g, g.Bounds(), xdraw.Src, nil)
	return dst
}

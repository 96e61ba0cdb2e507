package capture

import (
	"time"

	"ballotgate/internal/platform/config"
)

// DefaultMaxWait bounds an unattended capture
const DefaultMaxWait = 2 * time.Minute

// Options bound the capture loop
type Options struct {
	// MaxWait is the wall clock budget from lock acquisition, 0 disables it
	MaxWait time.Duration
	// MaxFrames is the frame budget, 0 disables it
	MaxFrames int
	// Observer, if set, sees every transition
	Observer Observer
	// now is a clock seam for tests
	now func() time.Time
}

// FromConfig reads CAPTURE_MAX_WAIT and CAPTURE_MAX_FRAMES under cfg
func FromConfig(cfg config.Conf) Options {
	return Options{
		MaxWait:   cfg.MayDuration("MAX_WAIT", DefaultMaxWait),
		MaxFrames: cfg.MayInt("MAX_FRAMES", 0),
	}
}

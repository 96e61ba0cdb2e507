//go:build !gocv

package camera

import (
	"context"
	"image"

	"ballotgate/internal/core/capture"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"
)

type unavailable struct{}

func (unavailable) Open(context.Context) (capture.Device, error) {
	return nil, perr.Unavailablef("camera: built without gocv")
}

type noFaces struct{}

func (noFaces) Detect(image.Image) []image.Rectangle { return nil }

// Open returns a rig that cannot stream; rebuild with -tags gocv for a real camera
func Open(c Config) (*Rig, error) {
	logger.Named("camera").Warn().Msg("built without gocv, captures will fail with device failure")
	op := operatorFor(c)
	if op == nil {
		op = NewAuto(c.AutoFrames)
	}
	return &Rig{Opener: unavailable{}, Detector: noFaces{}, Operator: op}, nil
}

package module

import (
	"time"

	"ballotgate/internal/adapters/camera"
	"ballotgate/internal/core/capture"
	"ballotgate/internal/core/credential"
	"ballotgate/internal/core/facematch"
	"ballotgate/internal/platform/config"
	"ballotgate/internal/services/gate/ticket"
)

// Options gathers gate settings from their env prefixes
type Options struct {
	FacesDir string        // GATE_FACES_DIR
	SweepAge time.Duration // GATE_SWEEP_AGE, leftovers older than this are dropped at start

	Camera  camera.Config       // CAPTURE_*
	Capture capture.Options     // CAPTURE_*
	Match   facematch.Options   // MATCH_*
	Cred    credential.Settings // CRED_*
	Ticket  ticket.Config       // TICKET_*
}

// FromConfig reads every gate prefix from the root config
func FromConfig(root config.Conf) Options {
	gate := root.Prefix("GATE_")
	capCfg := root.Prefix("CAPTURE_")
	return Options{
		FacesDir: gate.MayString("FACES_DIR", "faces"),
		SweepAge: gate.MayDuration("SWEEP_AGE", time.Hour),
		Camera:   camera.FromConfig(capCfg),
		Capture:  capture.FromConfig(capCfg),
		Match:    facematch.FromConfig(root.Prefix("MATCH_")),
		Cred:     credential.FromConfig(root.Prefix("CRED_")),
		Ticket:   ticket.FromConfig(root.Prefix("TICKET_")),
	}
}

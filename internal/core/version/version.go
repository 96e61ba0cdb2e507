// Package version reports the build stamped into a binary
package version

import "runtime"

// BuildInfo describes one build of a ballotgate binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// set with -ldflags "-X ballotgate/internal/core/version.version=v0.1.0 -X ballotgate/internal/core/version.commit=abcd"
var (
	service = "ballotgate"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build info for the running binary
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
	}
}

// Named returns Info with the service replaced by name when name is set
func Named(name string) BuildInfo {
	b := Info()
	if name != "" {
		b.Service = name
	}
	return b
}

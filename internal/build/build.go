// Package build holds build-time information.
package build

// Build information. Populated at build-time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Package buildinfo carries release metadata for `fshift version`.
package buildinfo

// Set at release time with
// -ldflags "-X github.com/fieldshift/fieldshift/internal/buildinfo.Version=..."
// and left empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

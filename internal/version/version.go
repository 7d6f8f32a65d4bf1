// Package version holds build-time version information.
// Values are injected via ldflags at build time:
//
//	go build -ldflags "-X github.com/mj1618/aerospace-layouts/internal/version.Version=v1.0.0"
package version

var (
	// Version is the semantic version (e.g. "v1.2.3").
	Version = "dev"
	// Commit is the git commit SHA the binary was built from.
	Commit = "none"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

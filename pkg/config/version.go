// Package config holds build metadata injected by the dev tool at link time.
package config

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// VersionString formats the build metadata for --version output.
func VersionString() string {
	return Version + "-" + Date + "-" + Commit
}

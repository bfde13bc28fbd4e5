// Package version exposes build identification, set at link time.
package version

// Overridden with -ldflags at release build time.
//
//nolint:gochecknoglobals
var (
	name    = "trackcheck"
	version = "dev"
	commit  = "unknown"
)

func Name() string {
	return name
}

func Version() string {
	return version
}

func Commit() string {
	return commit
}

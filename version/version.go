// Package version carries build identity, injected at link time via ldflags.
package version

//nolint:gochecknoglobals // set by the linker
var (
	name    = "mep"
	version = "dev"
	commit  = "unknown"
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the semantic version or "dev" for local builds.
func Version() string {
	return version
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	return commit
}

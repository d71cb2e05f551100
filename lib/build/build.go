// Package build carries build-time identity for the module. The values are
// set via -ldflags and default to development placeholders; they feed the
// MCP server info advertised to clients and the demo's version command.
package build

// Defaults for local builds; release builds override these with -X flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Version reports the release version, or "dev" for local builds.
func Version() string {
	return version
}

// Commit reports the source revision the binary was built from.
func Commit() string {
	return commit
}

// Date reports the build timestamp recorded at link time.
func Date() string {
	return date
}

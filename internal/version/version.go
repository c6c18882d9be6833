// Package version holds build version information shared by the client and
// the server.
package version

// Version is the build version string, set by ldflags during build.
// Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v0.1.0-dev"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"

// UserAgent is sent by the client on every request.
func UserAgent() string {
	return "filedrop/" + Version
}

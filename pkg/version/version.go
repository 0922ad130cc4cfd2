// Package version carries the build-time version string, overridable via
// -ldflags "-X hikefly/pkg/version.Version=...".
package version

// Version is the service version reported by /version. Overridden at
// build time; "dev" otherwise.
var Version = "dev"

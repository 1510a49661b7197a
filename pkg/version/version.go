// Package version holds the binary version reported by the CLI and sent
// to registries in the User-Agent header.
package version

import "fmt"

// Version is the release version of the binary. Overridden at build time:
//
//	go build -ldflags "-X github.com/lucas-albers-lz4/uptag/pkg/version.Version=1.2.3"
var Version = "0.4.0"

// UserAgent identifies the binary in registry requests.
func UserAgent() string {
	return fmt.Sprintf("uptag/%s", Version)
}

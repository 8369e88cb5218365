// Package version reports authd's build information.
//
// Version, GitCommit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/authd/version.Version=1.2.0" ./cmd/authd
//
// Values left empty fall back to the VCS stamps of debug.ReadBuildInfo.
package version

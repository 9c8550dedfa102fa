// Package version provides build version information embedding.
//
// Version, git commit, and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/shieldkit/shieldkit/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	// These variables are set at build time using -ldflags.
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the embedded version information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s = fmt.Sprintf("%s (%s)", s, i.GitCommit)
	}
	return s
}

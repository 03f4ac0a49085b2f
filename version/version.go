// Package version exposes build version information for the service.
package version

import (
	"runtime/debug"
)

// Set at build time with -ldflags "-X .../version.Version=v1.2.3".
var Version = "dev"

// Info is the version payload reported by the health endpoint.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the build's version information, filling the commit and Go
// version from embedded build info when available.
func Get() Info {
	info := Info{Version: Version}
	if build, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = build.GoVersion
		for _, setting := range build.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				info.GitCommit = setting.Value[:7]
			}
		}
	}
	return info
}

// Package version reports the credcascade build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags, e.g.
// -X github.com/Aman-CERP/credcascade/pkg/version.Version=$(VERSION)
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build description. Commit and date come from ldflags
// when set, otherwise from the VCS stamp the Go toolchain embeds.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fillVCS(bi.Settings)
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

func (i *Info) fillVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = s.Value
				if len(i.Commit) > 12 {
					i.Commit = i.Commit[:12]
				}
			}
		case "vcs.time":
			if i.Date == "" {
				i.Date = s.Value
			}
		case "vcs.modified":
			i.Dirty = s.Value == "true"
		}
	}
}

// String formats the build on one line.
func (i Info) String() string {
	commit := i.Commit
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("credcascade %s (commit: %s, built: %s, %s, %s)",
		i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

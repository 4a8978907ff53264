// Package buildinfo reports the pybundle build.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pybundle/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/pybundle/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
//
// Binaries installed with `go install` carry no ldflags; their version and
// VCS revision are read from the embedded module information instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var fillOnce sync.Once

// fill replaces unstamped values with what the Go toolchain recorded.
func fill() {
	fillOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "none":
				Commit = s.Value
			case s.Key == "vcs.time" && Date == "unknown":
				Date = s.Value
			}
		}
	})
}

// Current returns the version after filling in module information.
func Current() string {
	fill()
	return Version
}

// UserAgent identifies pybundle to package indexes.
func UserAgent() string {
	return "pybundle/" + Current()
}

// Template returns the cobra version template.
func Template() string {
	fill()
	short := Commit
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, short, Date)
}

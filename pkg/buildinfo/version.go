// Package buildinfo carries the version stamped into storekit binaries.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/storekit/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/storekit/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/storekit/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with "go install" fall back to the module version and VCS
// stamp recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

var (
	readOnce sync.Once
	info     Info
)

// Read returns the build metadata, filling unset ldflags values from the
// toolchain's embedded build info.
func Read() Info {
	readOnce.Do(func() {
		info = Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		info = fromBuildInfo(info, bi)
	})
	return info
}

func fromBuildInfo(in Info, bi *debug.BuildInfo) Info {
	if in.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		in.Version = bi.Main.Version
	}
	if bi.GoVersion != "" {
		in.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if in.Commit == "none" {
				in.Commit = s.Value
			}
		case "vcs.time":
			if in.Date == "unknown" {
				in.Date = s.Value
			}
		}
	}
	return in
}

// String returns the formatted build information.
func String() string {
	i := Read()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", i.Version, i.Commit, i.Date, i.GoVersion)
}

// Template returns the version template string for cobra.
func Template() string {
	i := Read()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}

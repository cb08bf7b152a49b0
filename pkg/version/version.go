package version

import (
	"fmt"
	"runtime"
)

// Version and GitCommit are set with -ldflags at build time.
var (
	Version   string
	GitCommit string
)

const fallbackVersion = "v0.0.0-dev"

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	GoVersion string
}

func Get() Info {
	v := Version
	if v == "" {
		v = fallbackVersion
	}
	return Info{
		Version:   v,
		GitCommit: GitCommit,
		GoVersion: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a pretty string concatenation of the version information.
func (i Info) String() string {
	return fmt.Sprintf("bbfire %s (commit: %s, go: %s)", i.Version, i.GitCommit, i.GoVersion)
}

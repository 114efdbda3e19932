package version

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Populated at build time via -ldflags; SetDefaults fills the gaps from
// build info when the binary was built without them.
var Version string
var GitCommit string

func SetDefaults() {
	if Version == "" {
		Version = "unknown"
	}
	if GitCommit != "" {
		return
	}
	GitCommit = ".dev"
	if build, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range build.Settings {
			if setting.Key == "vcs.revision" {
				GitCommit = setting.Value
				return
			}
		}
	}
}

func Print(usingLogger bool) {
	SetDefaults()
	line := fmt.Sprintf("ftp-sync %s (%s)", Version, GitCommit)
	if usingLogger {
		logrus.Info(line)
	} else {
		fmt.Println(line)
	}
}

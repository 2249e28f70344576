package version

import (
	"fmt"
	"runtime"
)

// Populated at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String returns a one-line build description.
func String() string {
	s := "HireMatch " + Version
	if GitCommit != "" {
		s += " (" + shortCommit() + ")"
	}
	return s
}

// PrintVersion writes the build description to stdout
func PrintVersion() {
	fmt.Println(String())
	if BuildTime != "" {
		fmt.Printf("Built:    %s\n", BuildTime)
	}
	fmt.Printf("Go:       %s\n", runtime.Version())
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

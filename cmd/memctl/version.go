package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..." by release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// VersionInfo is the version report, also emitted with --json.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	GoVersion string `json:"go_version,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// resolveVersion fills fields not set by ldflags from the module build info,
// so `go install` binaries still report their module version and VCS stamp.
func resolveVersion(info *debug.BuildInfo, ok bool) VersionInfo {
	v := VersionInfo{Version: version, Commit: commit, Built: date}
	if !ok || info == nil {
		return v
	}
	v.GoVersion = info.GoVersion
	if v.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "none" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if v.Built == "unknown" {
				v.Built = s.Value
			}
		}
	}
	return v
}

func runVersion() error {
	v := resolveVersion(debug.ReadBuildInfo())
	if jsonOut {
		return printJSON(v)
	}
	fmt.Printf("memctl %s\n", v.Version)
	fmt.Printf("  commit: %s\n", v.Commit)
	fmt.Printf("  built: %s\n", v.Built)
	if v.GoVersion != "" {
		fmt.Printf("  go: %s\n", v.GoVersion)
	}
	return nil
}

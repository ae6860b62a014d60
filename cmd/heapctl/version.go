package main

import (
	"runtime"
	runtimedebug "runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..." by release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	Module  string `json:"module,omitempty"`
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	})
}

func runVersion() error {
	v := versionInfo{Version: version, Commit: commit, Built: date, Go: runtime.Version()}
	// go install builds carry the module version instead of ldflags.
	if bi, ok := runtimedebug.ReadBuildInfo(); ok {
		v.Module = bi.Main.Path
		if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v.Version = bi.Main.Version
		}
	}
	if jsonOut {
		return printJSON(v)
	}
	printInfo("heapctl %s\n", v.Version)
	printInfo("  commit: %s\n", v.Commit)
	printInfo("  built:  %s\n", v.Built)
	printInfo("  go:     %s\n", v.Go)
	return nil
}

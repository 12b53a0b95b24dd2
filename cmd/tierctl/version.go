package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tierkit/alloc"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Threshold int    `json:"threshold"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print tierctl build and allocator information",
	Long: `The version command prints the tierctl release and commit it was built
from, the Go toolchain, and the local-tier threshold compiled into the
allocator.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   version,
			Commit:    commit,
			GoVersion: runtime.Version(),
			Threshold: alloc.Threshold,
		}
		if jsonOut {
			return printJSON(info)
		}
		printInfo("tierctl %s (commit %s, %s)\n", info.Version, info.Commit, info.GoVersion)
		printInfo("  local tier threshold: %d bytes\n", info.Threshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"runtime/debug"

	"github.com/hsanzg/wiinote/internal/logger"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		commit, date := buildInfo()
		logger.Infof("wiinote %s", Version)
		logger.Infof("commit: %s", commit)
		logger.Infof("built: %s", date)
	},
}

// buildInfo reads the VCS revision and build time the Go toolchain
// stamps into the binary.
func buildInfo() (commit, date string) {
	commit, date = "unknown", "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			date = s.Value
		}
	}
	return
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at release time via ldflags.
var (
	commit    = "unknown"
	buildTime = "unknown"
)

// SetBuildInfo records the commit hash and build timestamp.
func SetBuildInfo(c, bt string) {
	commit = c
	buildTime = bt
}

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   version,
		Commit:    commit,
		Built:     buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentBuild()
		short, _ := cmd.Flags().GetBool("short")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		switch {
		case short:
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
		case jsonOutput:
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "feedbackctl %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.Built, info.GoVersion, info.Platform)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print the bare version string")
	versionCmd.Flags().Bool("json", false, "output as JSON")
}

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Version is the version of this command.
var Version = "dev build"

func init() {
	// Convert version string space placeholders.
	Version = strings.ReplaceAll(Version, "§", " ")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   version,
}

func version(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	// Get build info.
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintf(out, "Whitelist %s\n", Version)
		return
	}
	buildSettings := make(map[string]string)
	for _, setting := range buildInfo.Settings {
		buildSettings[setting.Key] = setting.Value
	}

	// Print version info.
	fmt.Fprintf(out, "Whitelist %s\n", Version)
	fmt.Fprintf(out, "  Go %s %s %s\n", buildInfo.GoVersion, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  From %s\n", buildInfo.Path)
	fmt.Fprintf(out, "  Commit %s @%s dirty=%s\n", buildSettings["vcs.revision"], buildSettings["vcs.time"], buildSettings["vcs.modified"])
}

// =============================================================================
// ASYCUDA Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command.
//
// COMMAND USAGE:
//   asycuda-converter version [--short]
//
// OUTPUT:
//   ASYCUDA Converter
//   Version:    1.0.0
//   Build Date: 2025-06-01
//   Go Version: go1.24.11
//
// With --short only the version string is printed, for scripts.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/asycuda-converter/cmd.Version=1.0.0'"
//
// When Version is left empty, the module version recorded by `go install`
// is used.
var (
	Version   = ""
	BuildDate = "unknown"
)

// shortVersion prints only the version string.
var shortVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	// No configuration is needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), shortVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(
		&shortVersion,
		"short",
		false,
		"Print only the version string",
	)
}

func printVersion(out io.Writer, short bool) {
	v := resolveVersion(Version, debug.ReadBuildInfo)
	if short {
		fmt.Fprintln(out, v)
		return
	}
	fmt.Fprintln(out, "ASYCUDA Converter")
	fmt.Fprintf(out, "Version:    %s\n", v)
	fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
}

// resolveVersion prefers the ldflags value, then the main module version
// from the build info. Plain `go build` records "(devel)", reported as "dev".
func resolveVersion(set string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if set != "" {
		return set
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

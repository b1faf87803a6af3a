package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/internal/config"
	"github.com/joshuapare/evtxkit/internal/format"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionOutput struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Built       string `json:"built"`
	Library     string `json:"library,omitempty"`
	GoVersion   string `json:"go_version"`
	FormatMajor int    `json:"format_major"`
	MaxDepth    int    `json:"default_max_depth"`
	Workers     int    `json:"default_workers"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the evtxctl build, the evtxkit library it was built against,
and the EVTX format version it reads.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	out := versionOutput{
		Version:     version,
		Commit:      commit,
		Built:       date,
		Library:     libraryVersion(),
		GoVersion:   runtime.Version(),
		FormatMajor: format.FileMajorVersion,
		MaxDepth:    config.DefaultMaxDepth,
		Workers:     config.Default().Workers,
	}
	if jsonOut {
		return printJSON(out)
	}
	fmt.Printf("evtxctl %s\n", out.Version)
	fmt.Printf("  commit:  %s\n", out.Commit)
	fmt.Printf("  built:   %s\n", out.Built)
	if out.Library != "" {
		fmt.Printf("  evtxkit: %s\n", out.Library)
	}
	fmt.Printf("  go:      %s\n", out.GoVersion)
	fmt.Printf("  format:  EVTX %d.x, max nesting %d, %d workers by default\n",
		out.FormatMajor, out.MaxDepth, out.Workers)
	return nil
}

// libraryVersion reports the evtxkit module version linked into the binary.
func libraryVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == "github.com/joshuapare/evtxkit" {
			if dep.Replace != nil {
				return dep.Version + " => " + dep.Replace.Path
			}
			return dep.Version
		}
	}
	return ""
}

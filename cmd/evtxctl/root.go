package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/internal/config"
	"github.com/joshuapare/evtxkit/internal/logging"
	"github.com/joshuapare/evtxkit/pkg/evtx"
)

var (
	// Global flags
	configPath    string
	workers       int
	logLevel      string
	logFormat     string
	skipChecksums bool
	quiet         bool
	jsonOut       bool
)

var rootCmd = &cobra.Command{
	Use:   "evtxctl",
	Short: "Inspect Windows event log files",
	Long: `evtxctl decodes Windows Event Log (.evtx) files without Windows APIs.
It lists, searches and dumps records and reports structural damage found in
partially corrupt logs.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.IntVar(&workers, "workers", 0, "Chunks decoded in parallel (0 = number of CPUs)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, disabled")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console, json")
	pf.BoolVar(&skipChecksums, "skip-checksums", false, "Do not verify header and chunk checksums")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors and results")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the flags that were set explicitly.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	pf := rootCmd.PersistentFlags()
	if pf.Changed("workers") {
		cfg.Workers = workers
	}
	if pf.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if pf.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if skipChecksums {
		v := false
		cfg.VerifyChecksums = &v
	}
	if quiet {
		cfg.Logging.Level = "disabled"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openIndex opens path with the effective configuration. reg may be nil.
func openIndex(path string, reg prometheus.Registerer) (*evtx.RecordIndex, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.WithComponent(logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}), "evtxctl")
	opts := cfg.LoadOptions(&log)
	opts.Registerer = reg

	idx, err := evtx.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if n := len(idx.Diagnostics().Diagnostics); n > 0 {
		printInfo("note: %d issue(s) found while loading; run 'evtxctl diagnose %s'\n", n, path)
	}
	return idx, nil
}

// printInfo prints to stderr unless --quiet is set, keeping stdout for results.
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/pkg/types"
)

var (
	diagFormat      string
	diagOutputFile  string
	diagShowSummary bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <evtx>",
	Short: "Report structural damage found while loading an event log",
	Long: `Loads an event log and reports every problem found, with absolute file
offsets:
  - File header checksum and version
  - Chunk header magic and checksums
  - Record size, magic and ordering problems
  - Undecodable binary XML, unknown value types and nesting limits

Loading never stops at a damaged chunk or record, so the report covers the
whole file. The exit code is 2 with critical issues, 1 with errors.`,
	Example: `  # Scan a log and show text report
  evtxctl diagnose Security.evtx

  # Output JSON for programmatic analysis
  evtxctl diagnose --format json Security.evtx

  # Compact format for grep
  evtxctl diagnose --format compact damaged.evtx

  # Save report to file
  evtxctl diagnose --output report.txt Security.evtx`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVarP(&diagFormat, "format", "f", "text",
		"Output format: text, json, compact")
	diagnoseCmd.Flags().StringVarP(&diagOutputFile, "output", "o", "",
		"Write report to file instead of stdout")
	diagnoseCmd.Flags().BoolVarP(&diagShowSummary, "summary", "s", false,
		"Show only summary (no detailed diagnostics)")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	report, err := diagnose(args[0])
	if err != nil {
		return err
	}
	if code := exitCode(report); code != 0 {
		os.Exit(code)
	}
	return nil
}

// diagnose writes the report for path and returns it.
func diagnose(path string) (*types.DiagnosticReport, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	idx, err := openIndex(path, nil)
	if err != nil {
		return nil, err
	}
	defer idx.Close()
	report := idx.Diagnostics()

	var output string
	switch diagFormat {
	case "json":
		jsonStr, err := report.FormatJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to format JSON: %w", err)
		}
		output = jsonStr + "\n"
	case "compact":
		output = report.FormatTextCompact()
	case "text":
		if diagShowSummary {
			output = formatSummaryOnly(report)
		} else {
			output = report.FormatText()
		}
	default:
		return nil, fmt.Errorf("unknown format: %s (use: text, json, compact)", diagFormat)
	}

	if diagOutputFile != "" {
		if err := os.WriteFile(diagOutputFile, []byte(output), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output file: %w", err)
		}
		printInfo("Report written to: %s\n", diagOutputFile)
	} else {
		fmt.Print(output)
	}

	switch {
	case report.HasCriticalIssues():
		printInfo("\nCRITICAL issues found\n")
	case report.HasErrors():
		printInfo("\nErrors found\n")
	case report.Summary.Warnings > 0:
		printInfo("\nWarnings found (non-critical)\n")
	default:
		printInfo("\nNo issues found\n")
	}
	return report, nil
}

func exitCode(report *types.DiagnosticReport) int {
	switch {
	case report.HasCriticalIssues():
		return 2
	case report.HasErrors():
		return 1
	}
	return 0
}

func formatSummaryOnly(report *types.DiagnosticReport) string {
	output := fmt.Sprintf("Diagnostic Summary for %s\n", report.FilePath)
	output += fmt.Sprintf("File size: %d bytes\n", report.FileSize)
	output += fmt.Sprintf("Scan time: %v\n\n", report.ScanTime)
	output += fmt.Sprintf("Critical:  %d\n", report.Summary.Critical)
	output += fmt.Sprintf("Errors:    %d\n", report.Summary.Errors)
	output += fmt.Sprintf("Warnings:  %d\n", report.Summary.Warnings)
	output += fmt.Sprintf("Info:      %d\n", report.Summary.Info)
	return output
}

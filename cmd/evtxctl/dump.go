package main

import (
	"fmt"
	"iter"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/pkg/evtx"
)

var (
	dumpFormat string
	dumpLimit  int
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "xml", "Output format: xml, json, summary")
	cmd.Flags().IntVar(&dumpLimit, "limit", 0, "Maximum records (0 = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <evtx>",
		Short: "Print every record in id order",
		Long: `The dump command prints all records in ascending record id order.

Example:
  evtxctl dump System.evtx
  evtxctl dump System.evtx --format json --limit 10
  evtxctl dump System.evtx --format summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	switch dumpFormat {
	case "xml", "json", "summary":
	default:
		return fmt.Errorf("unknown format: %s (use: xml, json, summary)", dumpFormat)
	}

	idx, err := openIndex(args[0], nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	return writeRecords(idx.All(), dumpFormat, dumpLimit)
}

// writeRecords prints up to limit records of seq to stdout.
func writeRecords(seq iter.Seq[*evtx.EventRecord], format string, limit int) error {
	var out []recordJSON
	n := 0
	for r := range seq {
		if limit > 0 && n == limit {
			break
		}
		n++
		switch format {
		case "json":
			out = append(out, toRecordJSON(r, true))
		case "summary":
			writeSummary(os.Stdout, r)
		default:
			if r.Err() != nil {
				fmt.Printf("<!-- record %d: %v -->\n", r.ID(), r.Err())
			}
			fmt.Print(r.RawXML())
		}
	}
	if format == "json" {
		if out == nil {
			out = []recordJSON{}
		}
		return printJSON(out)
	}
	return nil
}

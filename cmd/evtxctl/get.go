package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <evtx> <record-id>",
		Short: "Print one record by id",
		Long: `The get command prints the record with the given id as XML, or as JSON
with --json.

Example:
  evtxctl get Security.evtx 4242
  evtxctl get Security.evtx 4242 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
	return cmd
}

func runGet(args []string) error {
	id, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record id %q", args[1])
	}

	idx, err := openIndex(args[0], nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	rec, ok := idx.ByID(id)
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	if jsonOut {
		return printJSON(toRecordJSON(rec, true))
	}
	fmt.Print(rec.RawXML())
	return nil
}

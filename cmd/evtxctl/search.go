package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/pkg/evtx"
)

var (
	searchProvider   string
	searchEventIDs   []uint
	searchLevel      int
	searchText       string
	searchInData     bool
	searchMaxResults int
	searchFormat     string
)

func init() {
	cmd := newSearchCmd()
	cmd.Flags().StringVar(&searchProvider, "provider", "", "Provider name (exact)")
	cmd.Flags().UintSliceVar(&searchEventIDs, "event-id", nil, "Event id; repeat or comma-separate for several")
	cmd.Flags().IntVar(&searchLevel, "level", -1, "Numeric level (0-5)")
	cmd.Flags().StringVar(&searchText, "text", "", "Case-sensitive text in provider or event id")
	cmd.Flags().BoolVar(&searchInData, "in-data", false, "Also search --text in the event XML")
	cmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "Limit results (0 = unlimited)")
	cmd.Flags().StringVarP(&searchFormat, "format", "f", "summary", "Output format: summary, xml, json")
	rootCmd.AddCommand(cmd)
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <evtx>",
		Short: "Find records by provider, event id, level or text",
		Long: `The search command prints the records matching every given filter, in
ascending record id order.

Example:
  evtxctl search Security.evtx --event-id 4624,4625
  evtxctl search System.evtx --provider "Service Control Manager" --level 2
  evtxctl search Security.evtx --text alice --in-data --format xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
	return cmd
}

func searchPredicate() evtx.Predicate {
	var preds []evtx.Predicate
	if searchProvider != "" {
		preds = append(preds, evtx.ProviderIs(searchProvider))
	}
	if len(searchEventIDs) > 0 {
		ids := make([]uint32, len(searchEventIDs))
		for i, id := range searchEventIDs {
			ids[i] = uint32(id)
		}
		preds = append(preds, evtx.EventIDIs(ids...))
	}
	if searchLevel >= 0 {
		preds = append(preds, evtx.LevelIs(searchLevel))
	}
	if searchText != "" {
		preds = append(preds, evtx.TextContains(searchText, searchInData))
	}
	return evtx.And(preds...)
}

func runSearch(args []string) error {
	switch searchFormat {
	case "xml", "json", "summary":
	default:
		return fmt.Errorf("unknown format: %s (use: summary, xml, json)", searchFormat)
	}

	idx, err := openIndex(args[0], nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	return writeRecords(idx.Find(searchPredicate()), searchFormat, searchMaxResults)
}

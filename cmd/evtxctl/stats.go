package main

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/joshuapare/evtxkit/pkg/evtx"
)

var statsTop int

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsTop, "top", 10, "Entries shown per breakdown")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <evtx>",
		Short: "Show load metrics and record breakdowns",
		Long: `The stats command loads an event log once and shows the loader metrics
(chunks by status, records decoded, diagnostics by kind, load time) together
with record counts by provider, event id and level.

Example:
  evtxctl stats Security.evtx
  evtxctl stats Security.evtx --top 20 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
	return cmd
}

// Stats is the stats command output.
type Stats struct {
	File      string             `json:"file"`
	Records   int                `json:"records"`
	Metrics   map[string]float64 `json:"metrics"`
	Providers []Count            `json:"providers"`
	EventIDs  []Count            `json:"event_ids"`
	Levels    []Count            `json:"levels"`
	Undecoded int                `json:"undecoded"`
}

// Count is one breakdown entry.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func runStats(args []string) error {
	reg := prometheus.NewRegistry()
	idx, err := openIndex(args[0], reg)
	if err != nil {
		return err
	}
	defer idx.Close()

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	st := collectStats(idx, families, statsTop)
	st.File = args[0]

	if jsonOut {
		return printJSON(st)
	}

	w := os.Stdout
	fmt.Fprintf(w, "File:     %s\n", st.File)
	fmt.Fprintf(w, "Records:  %d (%d undecodable)\n\n", st.Records, st.Undecoded)
	fmt.Fprintln(w, "Load metrics:")
	for _, k := range slices.Sorted(maps.Keys(st.Metrics)) {
		fmt.Fprintf(w, "  %-60s %g\n", k, st.Metrics[k])
	}
	printCounts := func(title string, counts []Count) {
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, c := range counts {
			fmt.Fprintf(w, "  %8d  %s\n", c.Count, c.Key)
		}
	}
	printCounts("Providers", st.Providers)
	printCounts("Event ids", st.EventIDs)
	printCounts("Levels", st.Levels)
	return nil
}

func collectStats(idx *evtx.RecordIndex, families []*dto.MetricFamily, top int) Stats {
	st := Stats{Records: idx.Len(), Metrics: flattenMetrics(families)}
	providers := map[string]int{}
	eventIDs := map[string]int{}
	levels := map[string]int{}
	for r := range idx.All() {
		if r.Err() != nil {
			st.Undecoded++
			continue
		}
		providers[r.ProviderName()]++
		eventIDs[r.EventIDText()]++
		levels[r.Level()]++
	}
	st.Providers = topCounts(providers, top)
	st.EventIDs = topCounts(eventIDs, top)
	st.Levels = topCounts(levels, top)
	return st
}

// flattenMetrics turns gathered families into "name{label=value}" keys.
// Histograms contribute their sample count and sum.
func flattenMetrics(families []*dto.MetricFamily) map[string]float64 {
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName() + labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[key] = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[key+"_count"] = float64(m.GetHistogram().GetSampleCount())
				out[key+"_sum"] = m.GetHistogram().GetSampleSum()
			}
		}
	}
	return out
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.GetName() + "=" + l.GetValue()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func topCounts(m map[string]int, top int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		if k == "" {
			k = "(none)"
		}
		out = append(out, Count{Key: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

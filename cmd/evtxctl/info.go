package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <evtx>",
		Short: "Show header fields, chunk layout and record counts",
		Long: `The info command loads an event log and prints its file header, the
state of every chunk and the range of record ids.

Example:
  evtxctl info Security.evtx
  evtxctl info Security.evtx --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type infoOutput struct {
	File         string `json:"file"`
	Size         int64  `json:"size"`
	MajorVersion uint16 `json:"major_version"`
	MinorVersion uint16 `json:"minor_version"`
	ChunkCount   uint16 `json:"chunk_count"`
	ChunksRead   int    `json:"chunks_read"`
	NextRecordID uint64 `json:"next_record_id"`
	Dirty        bool   `json:"dirty"`
	Full         bool   `json:"full"`
	Records      int    `json:"records"`
	FirstID      uint64 `json:"first_record_id,omitempty"`
	LastID       uint64 `json:"last_record_id,omitempty"`
	EmptyChunks  int    `json:"empty_chunks"`
	Degraded     int    `json:"degraded_chunks"`
	Corrupt      int    `json:"corrupt_chunks"`
	Issues       int    `json:"issues"`
}

func runInfo(args []string) error {
	path := args[0]
	idx, err := openIndex(path, nil)
	if err != nil {
		return err
	}
	defer idx.Close()

	h := idx.Header()
	out := infoOutput{
		File:         path,
		Size:         idx.Diagnostics().FileSize,
		MajorVersion: h.MajorVersion,
		MinorVersion: h.MinorVersion,
		ChunkCount:   h.ChunkCount,
		NextRecordID: h.NextRecordID,
		Dirty:        h.Dirty,
		Full:         h.Full,
		Records:      idx.Len(),
		Issues:       len(idx.Diagnostics().Diagnostics),
	}
	chunks := idx.Chunks()
	out.ChunksRead = len(chunks)
	for _, c := range chunks {
		switch {
		case c.Empty:
			out.EmptyChunks++
		case c.Corrupt:
			out.Corrupt++
		case c.Degraded:
			out.Degraded++
		}
	}
	if idx.Len() > 0 {
		out.FirstID = idx.At(0).ID()
		out.LastID = idx.At(idx.Len() - 1).ID()
	}

	if jsonOut {
		return printJSON(out)
	}

	w := os.Stdout
	fmt.Fprintf(w, "File:            %s\n", out.File)
	fmt.Fprintf(w, "Size:            %d bytes\n", out.Size)
	fmt.Fprintf(w, "Version:         %d.%d\n", out.MajorVersion, out.MinorVersion)
	fmt.Fprintf(w, "Chunks:          %d stated, %d read (%d empty, %d degraded, %d corrupt)\n",
		out.ChunkCount, out.ChunksRead, out.EmptyChunks, out.Degraded, out.Corrupt)
	fmt.Fprintf(w, "Flags:           dirty=%t full=%t\n", out.Dirty, out.Full)
	fmt.Fprintf(w, "Next record id:  %d\n", out.NextRecordID)
	fmt.Fprintf(w, "Records:         %d", out.Records)
	if out.Records > 0 {
		fmt.Fprintf(w, " (ids %d..%d)", out.FirstID, out.LastID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Issues:          %d\n", out.Issues)
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base statistics",
	Long: `Stats prints the document, relationship, and concept counts recorded in
the snapshot, the per-category breakdown, and whether embeddings are
available with the current configuration.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	b := openBase(cmd)
	return formatStats(os.Stdout, b.Stats(), b.SavedAt(), b.EmbeddingsAvailable(), jsonOutput)
}

func formatStats(w io.Writer, s types.Stats, savedAt time.Time, embeddings, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "Documents:     %d\n", s.Documents)
	fmt.Fprintf(w, "Relationships: %d\n", s.Relationships)
	fmt.Fprintf(w, "Concepts:      %d\n", s.Concepts)
	fmt.Fprintf(w, "Embeddings:    %t\n", embeddings)
	if !savedAt.IsZero() {
		fmt.Fprintf(w, "Saved:         %s\n", savedAt.Local().Format(time.DateTime))
	}

	if len(s.Categories) > 0 {
		cats := make([]string, 0, len(s.Categories))
		for c := range s.Categories {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		fmt.Fprintln(w, "\nCategories:")
		for _, c := range cats {
			fmt.Fprintf(w, "  %-20s %d\n", c, s.Categories[c])
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/internal/graph"
	"github.com/pdiddy/kgraph/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the most connected documents and concepts",
	Long: `Graph rebuilds the concept relationship graph from the stored documents
and lists the documents with the most edges and the concepts shared by the
most pairs. Pass --save to persist the recomputed quality scores.`,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")
	save, _ := cmd.Flags().GetBool("save")

	b := openBase(cmd)
	b.RebuildGraph()
	b.RecomputeCentrality()

	printGraph(os.Stdout, b.Documents(), b.Relationships(), top)
	if save {
		return b.Save()
	}
	return nil
}

type ranked struct {
	key   string
	count int
}

// topCounts orders counts descending, ties by key, and keeps n.
func topCounts(counts map[string]int, n int) []ranked {
	out := make([]ranked, 0, len(counts))
	for k, c := range counts {
		out = append(out, ranked{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func printGraph(w io.Writer, docs []types.Document, rels []types.Relationship, top int) {
	fmt.Fprintf(w, "%d documents, %d relationships\n", len(docs), len(rels))
	if len(rels) == 0 {
		return
	}

	names := make(map[string]string, len(docs))
	quality := make(map[string]float64, len(docs))
	for _, d := range docs {
		names[d.SourceID] = d.Name
		quality[d.SourceID] = d.QualityScore
	}

	fmt.Fprintln(w, "\nMost connected documents:")
	for _, r := range topCounts(graph.Degrees(rels), top) {
		fmt.Fprintf(w, "  %-40s  %4d edges  quality %.2f\n", truncate(names[r.key], 40), r.count, quality[r.key])
	}

	concepts := make(map[string]int)
	for _, r := range rels {
		concepts[r.Concept]++
	}
	fmt.Fprintln(w, "\nMost shared concepts:")
	for _, r := range topCounts(concepts, top) {
		fmt.Fprintf(w, "  %-40s  %4d pairs\n", r.key, r.count)
	}
}

func init() {
	graphCmd.Flags().Int("top", 10, "number of documents and concepts to list")
	graphCmd.Flags().Bool("save", false, "save recomputed quality scores to the snapshot")
	rootCmd.AddCommand(graphCmd)
}

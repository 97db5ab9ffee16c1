// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/internal/knowledge"
)

var gatherCmd = &cobra.Command{
	Use:   "gather [paths...]",
	Short: "Ingest files and directories, then reindex",
	Long: `Gather walks each path and ingests every supported file: text, Markdown,
source code, configuration, .docx, and .pdf. Hidden directories and the
index directory are skipped, as are files above max_file_bytes.

Without arguments gather refreshes the default roots: the knowledge
directory (category "knowledge"), docs/ ("docs"), and the current
directory ("repo"). Documents previously ingested from files under those
roots are replaced; seeded and digest documents are kept. With arguments
the paths are added to the existing store under --category.`,
	RunE: runGather,
}

// gatherSource is one default location for a full gather.
type gatherSource struct {
	path     string
	category string
}

func runGather(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	b := openBase(cmd)
	refresh := len(args) == 0

	var sources []gatherSource
	if refresh {
		sources = []gatherSource{
			{b.KnowledgeDir(), "knowledge"},
			{"docs", "docs"},
			{".", "repo"},
		}
	} else {
		for _, p := range args {
			sources = append(sources, gatherSource{p, category})
		}
	}

	forgotten := 0
	if refresh {
		for _, src := range sources {
			forgotten += b.Forget(src.path)
		}
	}

	var total knowledge.IngestSummary
	for _, src := range sources {
		s := ingestPath(b, src.path, src.category)
		total.Ingested += s.Ingested
		total.Skipped += s.Skipped
		total.Failed += s.Failed
	}

	if total.Ingested > 0 || forgotten > 0 {
		if err := commit(cmd, b); err != nil {
			return err
		}
	}
	fmt.Fprintf(progress(), "gathered %d files (%d skipped, %d failed), %d documents in store\n",
		total.Ingested, total.Skipped, total.Failed, b.Len())
	return nil
}

// ingestPath ingests a single file or a directory tree.
func ingestPath(b *knowledge.Base, path, category string) knowledge.IngestSummary {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return b.IngestTree(path, category, b.MaxFileBytes())
	}
	n, err := b.IngestFile(path, category)
	switch {
	case err != nil:
		fmt.Fprintf(progress(), "warning: %v\n", err)
		return knowledge.IngestSummary{Failed: 1}
	case n == 0:
		return knowledge.IngestSummary{Skipped: 1}
	}
	return knowledge.IngestSummary{Ingested: 1}
}

func init() {
	gatherCmd.Flags().String("category", "gather", "category for documents from explicit paths")
	rootCmd.AddCommand(gatherCmd)
}

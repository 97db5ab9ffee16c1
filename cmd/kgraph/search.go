// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base",
	Long: `Search ranks documents against the query with the TF-IDF index and, when
an embedding provider is configured, the embedding index. A document's
score is the best score any index gives it. When neither index can score
the query, documents are ranked by fuzzy match against their snippets.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if load, _ := cmd.Flags().GetString("load"); load != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runSearch,
}

// searchResult is the JSON shape of one hit.
type searchResult struct {
	Rank         int      `json:"rank" yaml:"rank"`
	Name         string   `json:"name" yaml:"name"`
	SourceID     string   `json:"source_id" yaml:"source_id"`
	Category     string   `json:"category" yaml:"category"`
	QualityScore float64  `json:"quality_score" yaml:"quality_score"`
	ConceptTags  []string `json:"concept_tags" yaml:"concept_tags"`
	Snippet      string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	withSnippet, _ := cmd.Flags().GetBool("snippet")
	savePath, _ := cmd.Flags().GetString("save")
	loadPath, _ := cmd.Flags().GetString("load")

	if loadPath != "" {
		qf, err := ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Query %q saved %s\n\n", qf.Query, qf.Summary.Timestamp.Local().Format(time.DateTime))
		return formatSearchOutput(os.Stdout, qf.Results, jsonOutput, withSnippet)
	}

	cfg := loadConfig()
	if limit < 1 {
		limit = cfg.MaxResults
	}

	query := strings.Join(args, " ")
	b := openBase(cmd)
	results := toSearchResults(b.Search(cmd.Context(), query, limit))

	if savePath != "" {
		qf := QueryFile{
			Query:   query,
			Config:  QueryFileConfig{Limit: limit, Embeddings: b.EmbeddingsAvailable(), Fuzzy: cfg.Fuzzy},
			Results: results,
			Summary: QuerySummary{Total: len(results), Documents: b.Len(), Timestamp: time.Now()},
		}
		if err := WriteQueryFile(savePath, qf); err != nil {
			return err
		}
		fmt.Fprintf(progress(), "saved search to %s\n", savePath)
	}
	return formatSearchOutput(os.Stdout, results, jsonOutput, withSnippet)
}

func toSearchResults(hits []types.Document) []searchResult {
	results := make([]searchResult, len(hits))
	for i, d := range hits {
		results[i] = searchResult{
			Rank:         i + 1,
			Name:         d.Name,
			SourceID:     d.SourceID,
			Category:     d.Category,
			QualityScore: d.QualityScore,
			ConceptTags:  d.ConceptTags,
			Snippet:      d.Snippet,
		}
	}
	return results
}

func formatSearchOutput(w io.Writer, results []searchResult, jsonOutput, withSnippet bool) error {
	if jsonOutput {
		if !withSnippet {
			trimmed := make([]searchResult, len(results))
			for i, r := range results {
				r.Snippet = ""
				trimmed[i] = r
			}
			results = trimmed
		}
		if results == nil {
			results = []searchResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-30s  %-10s  %-7s  %s\n", "Rank", "Name", "Category", "Quality", "Concepts")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, r := range results {
		tags := r.ConceptTags
		if len(tags) > 5 {
			tags = tags[:5]
		}
		fmt.Fprintf(w, "%-4d  %-30s  %-10s  %-7.2f  %s\n",
			r.Rank, truncate(r.Name, 30), truncate(r.Category, 10), r.QualityScore, strings.Join(tags, ", "))
		if withSnippet {
			fmt.Fprintf(w, "      %s\n", truncate(strings.Join(strings.Fields(r.Snippet), " "), 80))
		}
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use max_results)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("snippet", false, "include the start of each document")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("load", "", "show results from a saved query file instead of searching")
	rootCmd.AddCommand(searchCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/internal/digest"
)

const (
	// digestQueryHits is how many search hits a query digest outlines.
	digestQueryHits = 8
	// digestMaxSummaries caps the outlines joined into one digest.
	digestMaxSummaries = 20
	// digestMaxFileBytes skips large files when digesting a directory.
	digestMaxFileBytes = 2_000_000
)

var digestCmd = &cobra.Command{
	Use:   "digest <path|query>",
	Short: "Outline files or search hits and store the outline",
	Long: `Digest writes extractive outlines. When the argument is an existing file
or directory, each file is outlined: source files list their top-level
symbols, other files their most representative sentences. Otherwise the
argument is a search query and the top hits are outlined.

The joined outline is stored as a synthetic document in category "digest"
named digest_<timestamp>.md. Use --print to show it without storing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	printOnly, _ := cmd.Flags().GetBool("print")
	target := strings.Join(args, " ")

	b := openBase(cmd)

	var summaries []string
	if _, err := os.Stat(target); err == nil {
		summaries = digestPath(target)
	} else {
		for _, d := range b.Search(cmd.Context(), target, digestQueryHits) {
			summaries = append(summaries, digest.Outline(d.Name, d.FullContent))
		}
	}
	if len(summaries) > digestMaxSummaries {
		summaries = summaries[:digestMaxSummaries]
	}
	if len(summaries) == 0 {
		return fmt.Errorf("nothing to digest for %q", target)
	}

	blob := strings.Join(summaries, "\n\n")
	if printOnly {
		fmt.Println(blob)
		return nil
	}

	name := stampedName("digest", ".md")
	b.IngestText(blob, "digest", name)
	if err := commit(cmd, b); err != nil {
		return err
	}
	fmt.Printf("Digest %s created from %d outline(s)\n", name, len(summaries))
	return nil
}

// digestPath outlines a file, or every readable file under a directory.
func digestPath(path string) []string {
	var out []string
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if p != path {
			info, err := d.Info()
			if err != nil || info.Size() >= digestMaxFileBytes {
				return nil
			}
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		text := strings.ToValidUTF8(string(data), "")
		if digest.IsCodeFile(p) {
			out = append(out, digest.SummarizeCode(text, d.Name()))
		} else {
			out = append(out, digest.Summarize(text, d.Name(), digest.DefaultSentences))
		}
		return nil
	})
	return out
}

func init() {
	digestCmd.Flags().Bool("print", false, "print the digest instead of storing it")
	rootCmd.AddCommand(digestCmd)
}

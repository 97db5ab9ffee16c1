// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [text]",
	Short: "Add a synthetic document from text or stdin",
	Long: `Seed stores text that has no backing file, such as a pasted note or the
output of another tool. The text comes from the arguments or, when none
are given, from standard input.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	name, _ := cmd.Flags().GetString("name")

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to seed: provide text as arguments or on stdin")
	}
	if name == "" {
		name = stampedName("seed", ".txt")
	}

	b := openBase(cmd)
	b.IngestText(text, category, name)
	return commit(cmd, b)
}

// stampedName returns prefix_YYYYMMDD_HHMMSS plus ext.
func stampedName(prefix, ext string) string {
	return prefix + "_" + time.Now().Format("20060102_150405") + ext
}

func init() {
	seedCmd.Flags().String("category", "seed", "category for the document")
	seedCmd.Flags().String("name", "", "document name (default: seed_<timestamp>.txt)")
	rootCmd.AddCommand(seedCmd)
}

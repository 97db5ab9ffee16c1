// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Ingest individual files",
	Long: `Add ingests each file into the knowledge base. Files whose text exceeds
50,000 characters are split into 8,000-character chunks named file#partN.
Unsupported or empty files are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	b := openBase(cmd)
	added, failed := 0, 0
	for _, path := range args {
		n, err := b.IngestFile(path, category)
		switch {
		case err != nil:
			fmt.Fprintf(progress(), "warning: %v\n", err)
			failed++
		case n == 0:
			fmt.Fprintf(progress(), "skipped %s: unsupported or empty\n", path)
		}
		added += n
	}

	if added > 0 {
		if err := commit(cmd, b); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be read", failed)
	}
	return nil
}

func init() {
	addCmd.Flags().String("category", "manual", "category for the added documents")
	rootCmd.AddCommand(addCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	Long: `Export writes every document (without full content), the relationship
graph, and statistics to <knowledge-dir>/index/export.yaml or export.json.
The graph is rebuilt first so the export reflects the stored documents.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	b := openBase(cmd)
	b.RebuildGraph()
	b.RecomputeCentrality()

	var (
		path string
		err  error
	)
	switch format {
	case "yaml", "":
		path, err = b.ExportYAML()
	case "json":
		path, err = b.ExportJSON()
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d documents to %s\n", b.Len(), path)
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	rootCmd.AddCommand(exportCmd)
}

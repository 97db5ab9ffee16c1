// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kgraph/internal/digest"
)

var describeCmd = &cobra.Command{
	Use:   "describe [path]",
	Short: "Outline a repository's languages and frameworks",
	Long: `Describe counts files per extension under path (default: the current
directory) and reports detected frameworks such as Node.js, Next.js,
FastAPI, and Docker.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		fmt.Println(digest.DescribeRepo(root))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

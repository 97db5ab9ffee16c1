// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kgraph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kgraph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// secretDefault returns fallback when it is set, otherwise the secret
// stored under key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets.Get(key, "")
}

// rootCmd is the base command for the kgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "kgraph",
	Short: "Local knowledge base with hybrid search and a concept graph",
	Long: `kgraph ingests notes, documents, and source trees into a local knowledge
base. Documents are tagged with concepts, linked when they share one, and
ranked by how connected they are. Search fuses a TF-IDF index with an
optional embedding index and falls back to fuzzy matching.

State lives in <knowledge-dir>/index/snapshot.db and is reloaded by every
command. Indexes are rebuilt from the stored documents on demand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 && !quiet() {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./kgraph.yaml or ~/.config/kgraph/config.yaml)")
	pf.String("knowledge-dir", defaultKnowledgeDir, "base directory for knowledge (contains index/)")
	pf.Int("max-results", 10, "default number of search results")
	pf.Bool("fuzzy", true, "use fuzzy matching when no index can score a query")
	pf.String("backend", string(defaultBackend), "document conversion backend: native or markitdown")
	pf.String("embedding", "none", "embedding provider: none, ollama, or openai")
	pf.BoolP("quiet", "q", false, "suppress progress output")

	viper.BindPFlag(keyKnowledgeDir, pf.Lookup("knowledge-dir"))
	viper.BindPFlag(keyMaxResults, pf.Lookup("max-results"))
	viper.BindPFlag(keyFuzzy, pf.Lookup("fuzzy"))
	viper.BindPFlag(keyBackend, pf.Lookup("backend"))
	viper.BindPFlag(keyProvider, pf.Lookup("embedding"))
	viper.BindPFlag(keyQuiet, pf.Lookup("quiet"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kgraph"))
		}
	}

	viper.SetEnvPrefix("KGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil && !quiet() {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

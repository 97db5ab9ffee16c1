// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// QueryFile is the on-disk form of a search and its results. A saved
// search can be shown again with --load without reopening the snapshot.
type QueryFile struct {
	Query   string          `yaml:"query"`
	Config  QueryFileConfig `yaml:"config"`
	Results []searchResult  `yaml:"results"`
	Summary QuerySummary    `yaml:"summary"`
}

// QueryFileConfig records the settings that produced the results.
type QueryFileConfig struct {
	Limit      int  `yaml:"limit"`
	Embeddings bool `yaml:"embeddings"`
	Fuzzy      bool `yaml:"fuzzy"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Documents int       `yaml:"documents"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves qf as YAML.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing query file: %w", err)
	}
	return nil
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

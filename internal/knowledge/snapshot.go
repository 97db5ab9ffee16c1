// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	indexDir     = "index"
	snapshotFile = "snapshot.db"

	metaStats   = "stats"
	metaSavedAt = "saved_at"
)

var snapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		position INTEGER PRIMARY KEY,
		source_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		snippet TEXT NOT NULL,
		full_content TEXT NOT NULL,
		quality_score REAL NOT NULL,
		concept_tags TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_source_id ON documents(source_id)`,
	`CREATE TABLE IF NOT EXISTS snapshot_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// SnapshotPath returns the location of the snapshot database.
func (b *Base) SnapshotPath() string {
	return filepath.Join(b.knowledgeDir, indexDir, snapshotFile)
}

// Save writes every document and the current statistics to the snapshot,
// replacing its previous contents in one transaction. Search indexes and
// relationships are not saved.
func (b *Base) Save() error {
	dir := filepath.Join(b.knowledgeDir, indexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", b.SnapshotPath())
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer db.Close()

	for _, stmt := range snapshotSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating snapshot schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO documents (position, source_id, name, category, snippet, full_content, quality_score, concept_tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range b.docs {
		tags, err := json.Marshal(d.ConceptTags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", d.SourceID, err)
		}
		if _, err := stmt.Exec(i, d.SourceID, d.Name, d.Category, d.Snippet,
			d.FullContent, d.QualityScore, string(tags)); err != nil {
			return fmt.Errorf("inserting %s: %w", d.SourceID, err)
		}
	}

	stats, err := json.Marshal(b.stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	meta := map[string]string{
		metaStats:   string(stats),
		metaSavedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	fmt.Fprintf(b.out, "saved %d documents → %s\n", len(b.docs), b.SnapshotPath())
	return nil
}

// Load replaces the store contents with the snapshot. It reports whether
// a snapshot was restored. A missing snapshot leaves the store empty
// without a message; an unreadable one is reported as a warning and also
// leaves the store empty. Indexes stay unbuilt either way.
func (b *Base) Load() bool {
	b.docs = nil
	b.rels = nil
	b.invalidate()
	b.refreshStats()

	path := b.SnapshotPath()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(b.out, "warning: cannot read snapshot %s: %v\n", path, err)
		}
		return false
	}

	docs, stats, err := readSnapshot(path)
	if err != nil {
		fmt.Fprintf(b.out, "warning: failed to load snapshot %s: %v\n", path, err)
		return false
	}

	b.docs = docs
	if stats != nil {
		b.stats = *stats
		if b.stats.Categories == nil {
			b.stats.Categories = map[string]int{}
		}
	} else {
		b.refreshStats()
	}
	fmt.Fprintf(b.out, "loaded %d documents from %s\n", len(docs), path)
	return true
}

// SavedAt returns the save timestamp recorded in the snapshot, or the
// zero time when there is none.
func (b *Base) SavedAt() time.Time {
	path := b.SnapshotPath()
	if _, err := os.Stat(path); err != nil {
		return time.Time{}
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return time.Time{}
	}
	defer db.Close()

	var v string
	if err := db.QueryRow(`SELECT value FROM snapshot_meta WHERE key = ?`, metaSavedAt).Scan(&v); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func readSnapshot(path string) ([]types.Document, *types.Stats, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT source_id, name, category, snippet, full_content, quality_score, concept_tags
		 FROM documents ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var (
			d    types.Document
			tags string
		)
		if err := rows.Scan(&d.SourceID, &d.Name, &d.Category, &d.Snippet,
			&d.FullContent, &d.QualityScore, &tags); err != nil {
			return nil, nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &d.ConceptTags); err != nil {
			return nil, nil, fmt.Errorf("decoding tags for %s: %w", d.SourceID, err)
		}
		if d.ConceptTags == nil {
			d.ConceptTags = []string{}
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var raw string
	err = db.QueryRow(`SELECT value FROM snapshot_meta WHERE key = ?`, metaStats).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		return docs, nil, nil
	case err != nil:
		return nil, nil, fmt.Errorf("reading stats: %w", err)
	}
	var stats types.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, nil, fmt.Errorf("decoding stats: %w", err)
	}
	return docs, &stats, nil
}

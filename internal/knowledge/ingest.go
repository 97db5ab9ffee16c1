// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/kgraph/internal/concepts"
	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	// ChunkThreshold is the text length above which a source is split.
	ChunkThreshold = 50_000
	// ChunkSize is the length of each chunk window.
	ChunkSize = 8_000
	// SnippetLength is the number of characters kept as a preview.
	SnippetLength = 2000

	virtualPrefix = "<virtual>/"
)

// plainExts are read from disk as UTF-8 text.
var plainExts = map[string]bool{
	".txt": true, ".md": true, ".rst": true, ".rxt": true, ".rtf": true,
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".json": true,
	".c": true, ".cpp": true, ".rs": true, ".go": true, ".java": true, ".cs": true,
}

// extractedExts are handed to the TextExtractor.
var extractedExts = map[string]bool{
	".docx": true,
	".pdf":  true,
}

// treeExts is the allow-list for IngestTree.
var treeExts = map[string]bool{
	".txt": true, ".md": true, ".rst": true, ".rxt": true, ".rtf": true,
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".json": true,
	".docx": true, ".pdf": true,
}

// IngestSummary holds counts from a tree ingestion run.
type IngestSummary struct {
	Ingested int
	Skipped  int
	Failed   int
}

// Total returns the number of allow-listed files visited.
func (s IngestSummary) Total() int {
	return s.Ingested + s.Skipped + s.Failed
}

// IngestFile adds the text of path as one document, or as ChunkSize
// chunks when the text exceeds ChunkThreshold characters. It returns the
// number of documents added. Unsupported extensions and files with no
// text add nothing and are not errors.
func (b *Base) IngestFile(path, category string) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var text string
	switch {
	case plainExts[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		text = strings.ToValidUTF8(string(data), "")
	case extractedExts[ext]:
		if b.extractor != nil {
			text = b.extractor.ExtractText(path)
		}
	default:
		return 0, nil
	}

	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	name := filepath.Base(path)
	n := utf8.RuneCountInString(text)
	if n <= ChunkThreshold {
		b.add(newDocument(path, name, category, text, types.QualityFileBaseline))
		fmt.Fprintf(b.out, "ingested %s → %s (%d chars)\n", name, category, n)
		return 1, nil
	}

	parts := chunk(text, ChunkSize)
	for i, part := range parts {
		suffix := fmt.Sprintf("#part%d", i+1)
		b.add(newDocument(path+suffix, name+suffix, category, part, types.QualityFileBaseline))
	}
	fmt.Fprintf(b.out, "ingested %s → %s as %d chunks (%d chars)\n", name, category, len(parts), n)
	return len(parts), nil
}

// IngestText adds a synthetic document with no backing file. Empty text
// is ignored and returns nil.
func (b *Base) IngestText(text, category, name string) *types.Document {
	if text == "" {
		return nil
	}
	b.add(newDocument(virtualPrefix+name, name, category, text, types.QualitySyntheticBaseline))
	fmt.Fprintf(b.out, "seeded %s → %s\n", name, category)
	d := b.docs[len(b.docs)-1]
	return &d
}

// IngestTree walks root in lexical order and ingests every allow-listed
// file no larger than maxBytes. A maxBytes below 1 uses the configured
// limit. Hidden directories and the knowledge base's own index directory
// are not descended into. Per-file failures are counted and never stop
// the walk; a missing root yields an empty summary.
func (b *Base) IngestTree(root, category string, maxBytes int64) IngestSummary {
	if maxBytes < 1 {
		maxBytes = b.maxFileBytes
	}

	var summary IngestSummary
	if _, err := os.Stat(root); err != nil {
		fmt.Fprintf(b.out, "warning: skipping %s: %v\n", root, err)
		return summary
	}

	skipDir := filepath.Clean(filepath.Join(b.knowledgeDir, indexDir))

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				fmt.Fprintf(b.out, "warning: cannot read %s: %v\n", path, err)
				return fs.SkipDir
			}
			summary.Failed++
			return nil
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || filepath.Clean(path) == skipDir) {
				return fs.SkipDir
			}
			return nil
		}
		if !treeExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			fmt.Fprintf(b.out, "failed  %s: %v\n", path, err)
			summary.Failed++
			return nil
		}
		if info.Size() > maxBytes {
			fmt.Fprintf(b.out, "skipped %s (%d bytes)\n", path, info.Size())
			summary.Skipped++
			return nil
		}

		n, err := b.IngestFile(path, category)
		switch {
		case err != nil:
			fmt.Fprintf(b.out, "failed  %s: %v\n", path, err)
			summary.Failed++
		case n == 0:
			summary.Skipped++
		default:
			summary.Ingested++
		}
		return nil
	})

	fmt.Fprintf(b.out, "%s: ingested %d, skipped %d, failed %d\n",
		root, summary.Ingested, summary.Skipped, summary.Failed)
	return summary
}

// Forget removes every file-backed document whose source lies under root
// and returns how many were removed. Synthetic documents are never
// removed.
func (b *Base) Forget(root string) int {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0
	}

	kept := b.docs[:0]
	removed := 0
	for _, d := range b.docs {
		if !strings.HasPrefix(d.SourceID, virtualPrefix) && under(absRoot, sourcePath(d.SourceID)) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	if removed == 0 {
		return 0
	}

	b.docs = kept
	b.rels = nil
	b.invalidate()
	b.refreshStats()
	fmt.Fprintf(b.out, "forgot %d documents under %s\n", removed, root)
	return removed
}

// sourcePath strips a chunk suffix such as "#part2" from a source ID.
func sourcePath(sourceID string) string {
	if i := strings.LastIndex(sourceID, "#part"); i > 0 {
		return sourceID[:i]
	}
	return sourceID
}

// under reports whether path resolves to absRoot or a file inside it.
func under(absRoot, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (b *Base) add(d types.Document) {
	b.docs = append(b.docs, d)
	b.invalidate()

	if b.tags == nil {
		b.tags = make(map[string]struct{})
		for _, prev := range b.docs[:len(b.docs)-1] {
			for _, t := range prev.ConceptTags {
				b.tags[t] = struct{}{}
			}
		}
	}
	for _, t := range d.ConceptTags {
		b.tags[t] = struct{}{}
	}
	b.stats.Documents = len(b.docs)
	b.stats.Concepts = len(b.tags)
	b.stats.Categories[d.Category]++
}

func newDocument(sourceID, name, category, text string, quality float64) types.Document {
	return types.Document{
		SourceID:     sourceID,
		Name:         name,
		Category:     category,
		Snippet:      prefix(text, SnippetLength),
		FullContent:  text,
		QualityScore: quality,
		ConceptTags:  concepts.Extract(text),
	}
}

// chunk splits text into consecutive windows of size characters. The last
// window may be shorter.
func chunk(text string, size int) []string {
	var parts []string
	start, count := 0, 0
	for i := range text {
		if count == size {
			parts = append(parts, text[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest produces short Markdown outlines of prose, source code,
// and whole repositories. Outlines are extractive and deterministic: the
// same input always yields the same text.
package digest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultSentences is the outline length used by Summarize callers
	// that have no preference.
	DefaultSentences = 10
	// MaxSymbols caps the symbol list in a code outline.
	MaxSymbols = 30
	// codeHeadLines is how much of a source file feeds the extract tail.
	codeHeadLines = 80
	// codeTailSentences is the extract length appended to code outlines.
	codeTailSentences = 6
)

var (
	tokenRe    = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_\-]{2,}`)
	sentenceRe = regexp.MustCompile(`[.!?]\s+`)

	stopwords = map[string]bool{
		"the": true, "and": true, "for": true, "with": true,
		"this": true, "that": true, "have": true, "from": true,
		"they": true, "will": true, "your": true, "you": true,
	}
)

// codeExts lists the extensions treated as source code.
var codeExts = map[string]bool{
	".py": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".go": true, ".rs": true, ".java": true, ".c": true, ".cpp": true,
}

// nameHints are substrings of a document name that mark it as code.
var nameHints = []string{".py", ".ts", ".js", ".go", ".rs", ".java"}

// IsCodeFile reports whether path has a source-code extension.
func IsCodeFile(path string) bool {
	return codeExts[strings.ToLower(filepath.Ext(path))]
}

// LooksLikeCode guesses whether a stored document holds source code from
// its name and content.
func LooksLikeCode(name, content string) bool {
	lower := strings.ToLower(name)
	for _, hint := range nameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return strings.Contains(content, "def ") || strings.Contains(content, "class ")
}

// Summarize returns "# title" followed by up to maxLen bullet sentences,
// the sentences whose words are most frequent across the whole text.
// Ties keep document order.
func Summarize(text, title string, maxLen int) string {
	if maxLen < 1 {
		maxLen = DefaultSentences
	}

	freq := make(map[string]int)
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if tok = strings.ToLower(tok); !stopwords[tok] {
			freq[tok]++
		}
	}

	type scored struct {
		score    int
		sentence string
	}
	sentences := splitSentences(text)
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		score := 0
		for _, tok := range tokenRe.FindAllString(strings.ToLower(s), -1) {
			score += freq[tok]
		}
		ranked[i] = scored{score, s}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var b strings.Builder
	b.WriteString("# " + title)
	for _, r := range ranked[:min(maxLen, len(ranked))] {
		if s := strings.TrimSpace(r.sentence); s != "" {
			b.WriteString("\n- " + s)
		}
	}
	return b.String()
}

// splitSentences breaks text after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	var out []string
	start := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, text[start:])
}

type symbolPattern struct {
	re     *regexp.Regexp
	format string
}

var symbolPatterns = []symbolPattern{
	// Python
	{regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`), "class %s"},
	{regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\(`), "def %s(...)"},
	// JavaScript and TypeScript
	{regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`), "class %s"},
	{regexp.MustCompile(`(?m)^\s*export\s+function\s+([A-Za-z_][A-Za-z0-9_]*)\(`), "function %s(...)"},
	{regexp.MustCompile(`(?m)^\s*export\s+const\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*\(`), "component %s"},
	// Go
	{regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)`), "func %s(...)"},
	{regexp.MustCompile(`(?m)^type\s+([A-Za-z_][A-Za-z0-9_]*)`), "type %s"},
}

// SummarizeCode outlines a source file: its top-level classes, functions
// and components (at most MaxSymbols, first occurrence wins), then an
// extract of the first lines.
func SummarizeCode(text, title string) string {
	seen := make(map[string]bool)
	var symbols []string
	for _, p := range symbolPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			sym := fmt.Sprintf(p.format, m[1])
			if !seen[sym] {
				seen[sym] = true
				symbols = append(symbols, sym)
			}
		}
	}

	var b strings.Builder
	b.WriteString("# " + title + "\n")
	if len(symbols) == 0 {
		b.WriteString("- (no top-level symbols found)")
	} else {
		for i, sym := range symbols[:min(MaxSymbols, len(symbols))] {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + sym)
		}
	}

	lines := strings.Split(text, "\n")
	head := strings.Join(lines[:min(codeHeadLines, len(lines))], "\n")
	b.WriteString("\n\n")
	b.WriteString(Summarize(head, title+" (extract)", codeTailSentences))
	return b.String()
}

// Outline picks SummarizeCode or Summarize for a named document.
func Outline(name, content string) string {
	if LooksLikeCode(name, content) {
		return SummarizeCode(content, name)
	}
	return Summarize(content, name, DefaultSentences)
}

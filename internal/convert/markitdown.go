// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/kgraph/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// markitdownFormats maps the extensions routed to the container to the
// format hint markitdown needs, since it reads the document from stdin and
// never sees the file name.
var markitdownFormats = map[string]string{
	".docx": "docx",
	".pdf":  "pdf",
}

// MarkitdownConverter turns office documents and PDFs into Markdown with
// the markitdown container image.
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter verifies that the markitdown image exists in rt.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Extensions returns the sorted file extensions Convert accepts.
func (m *MarkitdownConverter) Extensions() []string {
	exts := make([]string, 0, len(markitdownFormats))
	for ext := range markitdownFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Convert streams the file at path into the container with a format hint
// taken from its extension and returns the trimmed Markdown.
func (m *MarkitdownConverter) Convert(path string) (string, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := markitdownFormats[ext]
	if !ok {
		return "", fmt.Errorf("markitdown cannot convert %s: unsupported extension %q", name, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(imageMarkitdown, f, &out, "--extension", format); err != nil {
		return "", fmt.Errorf("converting %s (%s) with markitdown: %w", name, format, err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("markitdown found no text in %s (%s)", name, format)
	}
	return text, nil
}

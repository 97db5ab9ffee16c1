// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// DocxConverter reads paragraph text straight from the WordprocessingML
// part of a .docx archive.
type DocxConverter struct{}

// NewDocxConverter creates a DocxConverter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Convert returns one line per paragraph of the document body.
func (d *DocxConverter) Convert(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", docxBodyPart, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", docxBodyPart, err)
		}
		return parseDocumentXML(data)
	}
	return "", fmt.Errorf("%s has no %s", path, docxBodyPart)
}

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

func parseDocumentXML(data []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing %s: %w", docxBodyPart, err)
	}

	lines := make([]string, len(doc.Body.Paragraphs))
	for i, p := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n"), nil
}

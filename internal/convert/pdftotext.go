// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// ErrPdftotextNotFound is returned when the pdftotext binary is not on PATH.
var ErrPdftotextNotFound = errors.New("pdftotext not found on PATH (install poppler-utils)")

// commandRunner runs an external command and returns its stdout.
type commandRunner interface {
	LookPath(file string) (string, error)
	Output(name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) Output(name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// PdftotextConverter shells out to poppler's pdftotext, writing the text
// layer to stdout.
type PdftotextConverter struct {
	run commandRunner
}

// NewPdftotextConverter creates a converter backed by the pdftotext binary.
func NewPdftotextConverter() *PdftotextConverter {
	return &PdftotextConverter{run: osRunner{}}
}

// Convert returns the text layer of the PDF at path.
func (p *PdftotextConverter) Convert(path string) (string, error) {
	if _, err := p.run.LookPath(binPdftotext); err != nil {
		return "", ErrPdftotextNotFound
	}
	out, err := p.run.Output(binPdftotext, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed on %s: %w", path, err)
	}
	return string(out), nil
}

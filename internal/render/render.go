// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a title and summary into a persisted document.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Document is the renderable content for one paper summary.
type Document struct {
	Title string
	// Body holds the summary's non-blank lines in original order.
	Body []string
}

// NewDocument builds a Document from a title and raw summary prose.
// Blank and whitespace-only lines are skipped.
func NewDocument(title, summary string) Document {
	var body []string
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		body = append(body, line)
	}
	return Document{Title: title, Body: body}
}

// Heading returns the document heading line.
func (d Document) Heading() string {
	return "Summary of: " + d.Title
}

// Renderer renders one Document to a file. Implementations replace any
// existing file at the path.
type Renderer interface {
	// Ext is the artifact filename extension without the dot.
	Ext() string
	Render(doc Document, path string) error
}

// Error is the typed failure for one render or filesystem write. It is
// recovered at the per-paper level; the batch continues.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns the renderer selected by a render configuration.
func New(cfg types.RenderConfig) (Renderer, error) {
	return ForFormat(cfg.Format)
}

// ForFormat returns the renderer for a configured output format.
// An empty format selects PDF.
func ForFormat(format types.OutputFormat) (Renderer, error) {
	switch format {
	case types.OutputPDF, "":
		return &PDFRenderer{}, nil
	case types.OutputMarkdown:
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use pdf or markdown", format)
	}
}

// Write renders doc into dir as fileBase plus the renderer's extension.
// The directory and missing ancestors are created idempotently. An existing
// artifact at the path is replaced: last writer wins.
func Write(r Renderer, dir, fileBase string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &Error{Path: dir, Err: err}
	}
	path := filepath.Join(dir, fileBase+"."+r.Ext())
	if err := r.Render(doc, path); err != nil {
		return "", &Error{Path: path, Err: err}
	}
	return path, nil
}

// writeAtomic streams output into a temp file beside path and moves it into
// place, so a failed render never leaves a torn artifact behind.
func writeAtomic(path string, fn func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".render-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := fn(tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

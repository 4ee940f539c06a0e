// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch builds a delimited corpus file from arXiv search results:
// it downloads each matching paper's PDF, extracts its plain text, and
// writes one framed block per paper.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// corpusDelimiter frames each paper block in the corpus file. The digest
// segmenter splits on exactly this convention.
var corpusDelimiter = strings.Repeat("=", 50)

// extractText pulls plain text out of a downloaded PDF. Package var so
// tests can substitute a fixed extractor.
var extractText = extractPDFText

// Result holds the outcome of one corpus build.
type Result struct {
	Fetched int
	Failed  int
}

// Total returns the number of papers attempted.
func (r Result) Total() int { return r.Fetched + r.Failed }

// HasFailures reports whether any paper failed.
func (r Result) HasFailures() bool { return r.Failed > 0 }

// BuildCorpus searches arXiv for cfg.Query, downloads each hit's PDF, and
// writes the delimited corpus to cfg.OutFile (replaced atomically on
// completion). Individual download or extraction failures are logged and
// skipped; only search or output-file failures abort the build.
func BuildCorpus(ctx context.Context, client *http.Client, cfg types.FetchConfig, w io.Writer) (Result, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	entries, err := searchArxiv(ctx, client, cfg.Query, maxResults, cfg.HTTPConfig)
	if err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("no papers found for query %q", cfg.Query)
	}

	outDir := filepath.Dir(cfg.OutFile)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(outDir, ".fetch-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()

	var result Result
	for i, entry := range entries {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}

		fmt.Fprintf(w, "fetching %s\n", entry.Title)

		text, err := downloadAndExtract(ctx, client, entry.PDFURL, cfg.HTTPConfig)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Title, err)
			result.Failed++
			continue
		}

		if err := writeBlock(tmpFile, result.Fetched+1, entry, text); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return result, fmt.Errorf("writing corpus block: %w", err)
		}
		result.Fetched++
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return result, fmt.Errorf("closing temp corpus: %w", err)
	}
	if err := os.Rename(tmpPath, cfg.OutFile); err != nil {
		os.Remove(tmpPath)
		return result, fmt.Errorf("replacing %s: %w", cfg.OutFile, err)
	}

	fmt.Fprintf(w, "\nFetch summary: %d fetched, %d failed (total: %d)\n",
		result.Fetched, result.Failed, result.Total())
	return result, nil
}

// downloadAndExtract fetches a PDF to a temp file, extracts its text, and
// removes the PDF again.
func downloadAndExtract(ctx context.Context, client *http.Client, pdfURL string, cfg types.HTTPConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.Do(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("downloading PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, pdfURL)
	}

	tmpFile, err := os.CreateTemp("", "paper-digest-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp PDF: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing temp PDF: %w", closeErr)
	}

	return extractText(tmpPath)
}

// extractPDFText reads the whole PDF as plain text.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading extracted text: %w", err)
	}
	return string(data), nil
}

// writeBlock frames one paper's metadata and text between delimiter lines.
// The digest stage depends only on the delimiter and the Title line; the
// rest is context for human readers.
func writeBlock(w io.Writer, n int, entry paperEntry, text string) error {
	published := ""
	if !entry.Published.IsZero() {
		published = entry.Published.Format("2006-01-02")
	}
	_, err := fmt.Fprintf(w, "\n%s\nPaper %d\nTitle: %s\nPublished: %s\nAbstract: %s\nPDF URL: %s\n\nFull Content:\n%s\n%s\n",
		corpusDelimiter, n, entry.Title, published, entry.Abstract, entry.PDFURL, text, corpusDelimiter)
	return err
}

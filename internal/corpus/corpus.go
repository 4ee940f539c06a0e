// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads delimited research-paper corpora and splits them
// into individual paper records.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrCorpusRead marks fatal input failures: the corpus file is missing,
// unreadable, or not valid UTF-8. No batch run proceeds past this error.
var ErrCorpusRead = errors.New("corpus unreadable")

// minDelimiterRun is the shortest run of '=' accepted as a record delimiter.
// The producer writes exactly 50, but hand-edited corpora drift.
const minDelimiterRun = 10

// Load reads the corpus file and returns its contents.
// All failures wrap ErrCorpusRead.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorpusRead, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrCorpusRead, path)
	}
	return string(data), nil
}

// Segment splits a raw corpus into ordered paper records. Blocks are
// separated by delimiter lines (a line of nothing but '='). The block
// preceding the first delimiter is producer framing and is discarded;
// remaining blocks are trimmed and empty ones dropped.
//
// A corpus containing no delimiter line at all is treated as a single
// unframed record: the whole trimmed corpus, or no records when blank.
func Segment(raw string) []types.PaperRecord {
	var blocks []string
	var current []string
	sawDelimiter := false

	for _, line := range strings.Split(raw, "\n") {
		if isDelimiterLine(line) {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
			sawDelimiter = true
			continue
		}
		current = append(current, line)
	}
	blocks = append(blocks, strings.Join(current, "\n"))

	if sawDelimiter {
		blocks = blocks[1:]
	}

	var records []types.PaperRecord
	for _, block := range blocks {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		records = append(records, types.PaperRecord{
			Index: len(records) + 1,
			Text:  text,
		})
	}
	return records
}

// isDelimiterLine reports whether the line consists solely of '=' characters,
// at least minDelimiterRun of them.
func isDelimiterLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minDelimiterRun {
		return false
	}
	for _, c := range trimmed {
		if c != '=' {
			return false
		}
	}
	return true
}

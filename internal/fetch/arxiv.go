// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// paperEntry is one search hit with everything the corpus block needs.
type paperEntry struct {
	ID        string
	Title     string
	Abstract  string
	PDFURL    string
	Published time.Time
}

// searchArxiv queries the arXiv API for the newest submissions matching
// query and returns up to maxResults entries.
func searchArxiv(ctx context.Context, client *http.Client, query string, maxResults int, cfg types.HTTPConfig) ([]paperEntry, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}

	url := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, strings.Join(terms, "+"), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.Do(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var entries []paperEntry
	for _, e := range feed.Entries {
		entry := paperEntry{
			ID:       strings.TrimSpace(e.ID),
			Title:    strings.TrimSpace(e.Title),
			Abstract: strings.TrimSpace(e.Summary),
			PDFURL:   pdfLink(e),
		}
		if entry.PDFURL == "" {
			continue
		}
		if t, parseErr := time.Parse(time.RFC3339, e.Published); parseErr == nil {
			entry.Published = t
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// pdfLink picks the entry's PDF link, falling back to rewriting the
// abstract URL (arxiv.org/abs/ID -> arxiv.org/pdf/ID).
func pdfLink(e arxivEntry) string {
	for _, l := range e.Links {
		if l.Type == "application/pdf" || l.Title == "pdf" {
			return l.Href
		}
	}
	if strings.Contains(e.ID, "/abs/") {
		return strings.Replace(e.ID, "/abs/", "/pdf/", 1)
	}
	return ""
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Links     []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

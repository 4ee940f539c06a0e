// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page geometry for the generated summaries, in points from the top-left
// corner of an A4 page.
const (
	pageMarginX      = 50.0
	pageMarginY      = 50.0
	headingGap       = 40.0
	bodyWidth        = 495.0
	headingSize      = 18
	bodySize         = 11
	linesPerPage     = 40
	headingPageLines = 36 // fewer body lines fit under the heading
)

// PDFRenderer writes the summary as a PDF document via pdfcpu's JSON-driven
// page creation: the heading on the first page, body lines flowed below and
// onto continuation pages.
type PDFRenderer struct{}

// Ext returns "pdf".
func (*PDFRenderer) Ext() string { return "pdf" }

// Render writes the document to path, replacing any existing file.
func (*PDFRenderer) Render(doc Document, path string) error {
	decl, err := buildDeclaration(doc)
	if err != nil {
		return fmt.Errorf("building page declaration: %w", err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		if err := api.Create(nil, bytes.NewReader(decl), w, model.NewDefaultConfiguration()); err != nil {
			return fmt.Errorf("creating PDF: %w", err)
		}
		return nil
	})
}

// pdfcpu create-JSON structures, reduced to the fields the summaries need.

type pdfDeclaration struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfTextBox `json:"text"`
}

type pdfTextBox struct {
	Value    string     `json:"value"`
	Position [2]float64 `json:"pos"`
	Width    float64    `json:"width,omitempty"`
	Font     pdfFont    `json:"font"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// buildDeclaration lays the heading and body out over as many A4 pages as
// the line count requires and returns the pdfcpu create-JSON.
func buildDeclaration(doc Document) ([]byte, error) {
	decl := pdfDeclaration{
		Paper:  "A4",
		Origin: "upperLeft",
		Pages:  map[string]pdfPage{},
	}

	first := pdfPage{Content: pdfContent{Text: []pdfTextBox{{
		Value:    doc.Heading(),
		Position: [2]float64{pageMarginX, pageMarginY},
		Width:    bodyWidth,
		Font:     pdfFont{Name: "Helvetica-Bold", Size: headingSize},
	}}}}

	remaining := doc.Body
	if len(remaining) > 0 {
		n := min(len(remaining), headingPageLines)
		first.Content.Text = append(first.Content.Text, bodyBox(remaining[:n], pageMarginY+headingGap))
		remaining = remaining[n:]
	}
	decl.Pages["1"] = first

	for page := 2; len(remaining) > 0; page++ {
		n := min(len(remaining), linesPerPage)
		decl.Pages[fmt.Sprintf("%d", page)] = pdfPage{Content: pdfContent{
			Text: []pdfTextBox{bodyBox(remaining[:n], pageMarginY)},
		}}
		remaining = remaining[n:]
	}

	return json.Marshal(decl)
}

// bodyBox renders a run of summary lines as one wrapped text box.
func bodyBox(lines []string, y float64) pdfTextBox {
	return pdfTextBox{
		Value:    strings.Join(lines, "\n"),
		Position: [2]float64{pageMarginX, y},
		Width:    bodyWidth,
		Font:     pdfFont{Name: "Helvetica", Size: bodySize},
	}
}

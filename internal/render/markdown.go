// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownRenderer writes the summary as a Markdown document: the heading
// as an H1, then one bullet per summary line.
type MarkdownRenderer struct{}

// Ext returns "md".
func (*MarkdownRenderer) Ext() string { return "md" }

// Render writes the document to path, replacing any existing file.
func (*MarkdownRenderer) Render(doc Document, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "# %s\n", doc.Heading()); err != nil {
			return err
		}
		for _, line := range doc.Body {
			if !strings.HasPrefix(line, "* ") && !strings.HasPrefix(line, "- ") {
				line = "* " + line
			}
			if _, err := fmt.Fprintf(w, "\n%s\n", line); err != nil {
				return err
			}
		}
		return nil
	})
}

package render

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestNewDocumentSkipsBlankLines(t *testing.T) {
	doc := NewDocument("Alpha", "* one\n\n   \n* two\n\t\n* three")
	if len(doc.Body) != 3 {
		t.Fatalf("got %d body lines, want 3: %q", len(doc.Body), doc.Body)
	}
	want := []string{"* one", "* two", "* three"}
	for i, line := range want {
		if doc.Body[i] != line {
			t.Errorf("body[%d] = %q, want %q", i, doc.Body[i], line)
		}
	}
}

func TestDocumentHeading(t *testing.T) {
	doc := Document{Title: "Alpha"}
	if got := doc.Heading(); got != "Summary of: Alpha" {
		t.Errorf("Heading = %q", got)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  types.OutputFormat
		wantExt string
		wantErr bool
	}{
		{types.OutputPDF, "pdf", false},
		{types.OutputMarkdown, "md", false},
		{"", "pdf", false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		r, err := ForFormat(tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForFormat(%q): want error", tt.format)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForFormat(%q): %v", tt.format, err)
			continue
		}
		if r.Ext() != tt.wantExt {
			t.Errorf("ForFormat(%q).Ext() = %q, want %q", tt.format, r.Ext(), tt.wantExt)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	r, err := New(types.RenderConfig{Format: types.OutputMarkdown, OutputDir: "summaries"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Ext() != "md" {
		t.Errorf("Ext = %q, want md", r.Ext())
	}
	if _, err := New(types.RenderConfig{Format: "docx"}); err == nil {
		t.Error("New with unsupported format: want error")
	}
}

func TestMarkdownRender(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument("Alpha", "first point\n* second point")

	path, err := Write(&MarkdownRenderer{}, filepath.Join(dir, "summaries"), "Alpha", doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "Alpha.md" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "# Summary of: Alpha") {
		t.Errorf("missing heading:\n%s", got)
	}
	if !strings.Contains(got, "* first point") {
		t.Errorf("unbulleted line not bulleted:\n%s", got)
	}
	if !strings.Contains(got, "* second point") {
		t.Errorf("missing second point:\n%s", got)
	}
	if strings.Contains(got, "* * second point") {
		t.Errorf("bullet doubled:\n%s", got)
	}
}

func TestWriteCreatesMissingAncestors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "summaries")
	_, err := Write(&MarkdownRenderer{}, dir, "X", Document{Title: "X"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "X.md")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestWriteReplacesExistingArtifact(t *testing.T) {
	dir := t.TempDir()
	first := NewDocument("Alpha", "old content")
	if _, err := Write(&MarkdownRenderer{}, dir, "Alpha", first); err != nil {
		t.Fatal(err)
	}

	second := NewDocument("Alpha", "new content")
	path, err := Write(&MarkdownRenderer{}, dir, "Alpha", second)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "new content") || strings.Contains(string(data), "old content") {
		t.Errorf("last writer did not win:\n%s", data)
	}
}

func TestWriteFailureIsTypedError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	_, err := Write(&MarkdownRenderer{}, filepath.Join(dir, "sub"), "X", Document{Title: "X"})
	var rErr *Error
	if !errors.As(err, &rErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
}

// --- PDF declaration layout ---

func TestBuildDeclarationSinglePage(t *testing.T) {
	doc := NewDocument("Alpha", "* one\n* two")
	data, err := buildDeclaration(doc)
	if err != nil {
		t.Fatal(err)
	}

	var decl pdfDeclaration
	if err := json.Unmarshal(data, &decl); err != nil {
		t.Fatalf("declaration is not valid JSON: %v", err)
	}
	if decl.Paper != "A4" {
		t.Errorf("paper = %q", decl.Paper)
	}
	if len(decl.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(decl.Pages))
	}

	boxes := decl.Pages["1"].Content.Text
	if len(boxes) != 2 {
		t.Fatalf("got %d text boxes, want heading + body", len(boxes))
	}
	if boxes[0].Value != "Summary of: Alpha" {
		t.Errorf("heading box = %q", boxes[0].Value)
	}
	if !strings.Contains(boxes[1].Value, "* one") || !strings.Contains(boxes[1].Value, "* two") {
		t.Errorf("body box = %q", boxes[1].Value)
	}
}

func TestBuildDeclarationPaginates(t *testing.T) {
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		lines = append(lines, "* point")
	}
	doc := Document{Title: "Long", Body: lines}

	data, err := buildDeclaration(doc)
	if err != nil {
		t.Fatal(err)
	}
	var decl pdfDeclaration
	if err := json.Unmarshal(data, &decl); err != nil {
		t.Fatal(err)
	}

	// 36 lines on the heading page, 40 per continuation page.
	if len(decl.Pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(decl.Pages))
	}
	total := 0
	for name, p := range decl.Pages {
		for i, box := range p.Content.Text {
			if name == "1" && i == 0 {
				continue // heading
			}
			total += len(strings.Split(box.Value, "\n"))
		}
	}
	if total != 100 {
		t.Errorf("declaration carries %d body lines, want 100", total)
	}
}

func TestBuildDeclarationEmptyBody(t *testing.T) {
	data, err := buildDeclaration(Document{Title: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	var decl pdfDeclaration
	if err := json.Unmarshal(data, &decl); err != nil {
		t.Fatal(err)
	}
	if len(decl.Pages) != 1 || len(decl.Pages["1"].Content.Text) != 1 {
		t.Errorf("empty body should yield one page with only the heading")
	}
}

package digest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/render"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var delim = strings.Repeat("=", 50)

// fakeBackend summarizes deterministically and fails for records whose text
// contains failOn.
type fakeBackend struct {
	failOn string
	delay  time.Duration
}

func (f *fakeBackend) Summarize(_ context.Context, text string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return "", &summarize.Error{Model: "fake", Err: errors.New("model exploded")}
	}
	return "* key finding\n* second finding", nil
}

// failingRenderer always fails, standing in for a full disk.
type failingRenderer struct{}

func (failingRenderer) Ext() string { return "txt" }

func (failingRenderer) Render(render.Document, string) error {
	return errors.New("disk full")
}

func writeCorpus(t *testing.T, blocks ...string) string {
	t.Helper()
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString("\n" + delim + "\n")
		b.WriteString(block)
		b.WriteString("\n" + delim + "\n")
	}
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(input, outDir string) types.DigestConfig {
	return types.DigestConfig{InputFile: input, OutputDir: outDir}
}

func TestRunFailureIsolation(t *testing.T) {
	input := writeCorpus(t,
		"Title: Alpha\nFull Content:\nAlpha body.",
		"Title: Beta\nFull Content:\nBeta body.",
		"Title: Gamma\nFull Content:\nGamma body.",
	)
	outDir := filepath.Join(t.TempDir(), "summaries")

	var buf bytes.Buffer
	report, err := Run(context.Background(), &fakeBackend{failOn: "Beta body"}, &render.MarkdownRenderer{}, testConfig(input, outDir), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := report.Succeeded(); got != 2 {
		t.Errorf("succeeded = %d, want 2", got)
	}
	if got := report.Failed(); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
	if report.Outcomes[1].Title != "Beta" || report.Outcomes[1].Status != types.StatusFailed {
		t.Errorf("outcome[1] = %+v, want failed Beta", report.Outcomes[1])
	}
	if report.Outcomes[1].Reason == "" {
		t.Error("failed outcome carries no reason")
	}

	for _, name := range []string{"Alpha.md", "Gamma.md"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("sibling artifact missing: %v", err)
		}
		if !strings.Contains(string(data), "Summary of:") || !strings.Contains(string(data), "* key finding") {
			t.Errorf("%s content wrong:\n%s", name, data)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "Beta.md")); !os.IsNotExist(err) {
		t.Error("failed paper left an artifact behind")
	}

	if !strings.Contains(buf.String(), "failed  Beta") {
		t.Errorf("progress output missing failure line:\n%s", buf.String())
	}
}

func TestRunFatalInput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "summaries")
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.txt"), outDir)

	var buf bytes.Buffer
	report, err := Run(context.Background(), &fakeBackend{}, &render.MarkdownRenderer{}, cfg, &buf)
	if err == nil {
		t.Fatal("want error for missing corpus")
	}
	if len(report.Outcomes) != 0 {
		t.Errorf("fatal input produced %d outcomes", len(report.Outcomes))
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Error("fatal input created the output directory")
	}
}

func TestRunEmptyCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(delim+"\n"+delim+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(t.TempDir(), "summaries")

	var buf bytes.Buffer
	report, err := Run(context.Background(), &fakeBackend{}, &render.MarkdownRenderer{}, testConfig(path, outDir), &buf)
	if err != nil {
		t.Fatalf("empty corpus must not be an error: %v", err)
	}
	if len(report.Outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0", len(report.Outcomes))
	}
	if !strings.Contains(buf.String(), "no paper records") {
		t.Errorf("missing empty-corpus notice:\n%s", buf.String())
	}
	// An empty run still produces a report file, matching the history record.
	if _, err := os.Stat(filepath.Join(outDir, reportFile)); err != nil {
		t.Errorf("report file missing after empty run: %v", err)
	}
}

func TestRunUntitledFallback(t *testing.T) {
	input := writeCorpus(t, "Full Content:\nNo title in sight.")
	outDir := filepath.Join(t.TempDir(), "summaries")

	report, err := Run(context.Background(), &fakeBackend{}, &render.MarkdownRenderer{}, testConfig(input, outDir), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcomes[0].Title != "Untitled_Paper" {
		t.Errorf("title = %q", report.Outcomes[0].Title)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Untitled_Paper.md")); err != nil {
		t.Errorf("fallback artifact missing: %v", err)
	}
}

func TestRunTitleCollision(t *testing.T) {
	input := writeCorpus(t,
		"Title: Same Title\nFull Content:\nFirst.",
		"Title: Same Title\nFull Content:\nSecond.",
	)
	outDir := filepath.Join(t.TempDir(), "summaries")

	report, err := Run(context.Background(), &fakeBackend{}, &render.MarkdownRenderer{}, testConfig(input, outDir), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed() != 0 {
		t.Fatalf("collision run failed: %+v", report.Outcomes)
	}

	for _, name := range []string{"Same Title.md", "Same Title (2).md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected artifact %q: %v", name, err)
		}
	}
}

func TestRunRenderFailure(t *testing.T) {
	input := writeCorpus(t, "Title: Alpha\nFull Content:\nBody.")
	outDir := filepath.Join(t.TempDir(), "summaries")

	report, err := Run(context.Background(), &fakeBackend{}, failingRenderer{}, testConfig(input, outDir), io.Discard)
	if err != nil {
		t.Fatalf("render failure must not abort the batch: %v", err)
	}
	if report.Failed() != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed())
	}
	if !strings.Contains(report.Outcomes[0].Reason, "disk full") {
		t.Errorf("reason = %q", report.Outcomes[0].Reason)
	}
}

func TestRunWritesReportFile(t *testing.T) {
	input := writeCorpus(t, "Title: Alpha\nFull Content:\nBody.")
	outDir := filepath.Join(t.TempDir(), "summaries")

	if _, err := Run(context.Background(), &fakeBackend{}, &render.MarkdownRenderer{}, testConfig(input, outDir), io.Discard); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, reportFile))
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	var report types.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("report file not parseable: %v", err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Title != "Alpha" {
		t.Errorf("persisted report = %+v", report)
	}
}

func TestRunConcurrentWorkers(t *testing.T) {
	blocks := []string{
		"Title: P1\nFull Content:\nOne.",
		"Title: P2\nFull Content:\nTwo.",
		"Title: P3\nFull Content:\nThree.",
		"Title: P4\nFull Content:\nFour.",
		"Title: P5\nFull Content:\nFive.",
	}
	input := writeCorpus(t, blocks...)
	outDir := filepath.Join(t.TempDir(), "summaries")

	cfg := testConfig(input, outDir)
	cfg.Workers = 3

	report, err := Run(context.Background(), &fakeBackend{failOn: "Three", delay: 5 * time.Millisecond}, &render.MarkdownRenderer{}, cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(report.Outcomes); got != 5 {
		t.Fatalf("got %d outcomes, want 5", got)
	}
	// Corpus order is preserved regardless of completion order.
	for i, o := range report.Outcomes {
		if o.Index != i+1 {
			t.Errorf("outcome[%d].Index = %d, want %d", i, o.Index, i+1)
		}
	}
	if report.Succeeded() != 4 || report.Failed() != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 4/1", report.Succeeded(), report.Failed())
	}
	if report.Outcomes[2].Status != types.StatusFailed {
		t.Errorf("outcome[2] = %+v, want failed", report.Outcomes[2])
	}
}

func TestAssignJobsDisambiguation(t *testing.T) {
	records := []types.PaperRecord{
		{Index: 1, Text: "Title: A/B"},
		{Index: 2, Text: "Title: A/B"},
		{Index: 3, Text: "Title: A/B"},
		{Index: 4, Text: "Title: Other"},
	}
	jobs := assignJobs(records)

	want := []string{"A B", "A B (2)", "A B (3)", "Other"}
	for i, wb := range want {
		if jobs[i].fileBase != wb {
			t.Errorf("jobs[%d].fileBase = %q, want %q", i, jobs[i].fileBase, wb)
		}
	}
}

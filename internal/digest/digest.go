// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest orchestrates one batch run: load the corpus, segment it,
// and for each paper extract the title, summarize, and render a document.
package digest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/internal/corpus"
	"github.com/pdiddy/paper-digest/internal/render"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// reportFile is written into the output directory after each run.
const reportFile = "report.yaml"

// job carries one paper record through the per-paper pipeline. Titles and
// output names are assigned up front, in corpus order, so that filename
// collisions are disambiguated deterministically regardless of worker count.
type job struct {
	record   types.PaperRecord
	title    string
	fileBase string
}

// Run executes one batch. Only a corpus load failure aborts the run; every
// per-paper failure is recorded in the report and the batch continues.
// Progress lines go to w. The returned report lists outcomes in corpus order.
func Run(ctx context.Context, backend summarize.Backend, renderer render.Renderer, cfg types.DigestConfig, w io.Writer) (*types.Report, error) {
	report := &types.Report{
		InputFile: cfg.InputFile,
		OutputDir: cfg.OutputDir,
		StartedAt: time.Now().UTC(),
	}

	raw, err := corpus.Load(cfg.InputFile)
	if err != nil {
		return report, err
	}

	records := corpus.Segment(raw)
	if len(records) == 0 {
		fmt.Fprintf(w, "no paper records found in %s\n", cfg.InputFile)
		if err := writeReportFile(cfg.OutputDir, report); err != nil {
			fmt.Fprintf(w, "warning: %s write failed: %v\n", reportFile, err)
		}
		return report, nil
	}

	jobs := assignJobs(records)

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	if cfg.Workers > 1 {
		report.Outcomes = runPool(ctx, backend, renderer, limiter, cfg, jobs, w)
	} else {
		report.Outcomes = runSequential(ctx, backend, renderer, limiter, cfg, jobs, w)
	}

	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		report.Succeeded(), report.Failed(), len(report.Outcomes))

	if err := writeReportFile(cfg.OutputDir, report); err != nil {
		fmt.Fprintf(w, "warning: %s write failed: %v\n", reportFile, err)
	}

	return report, nil
}

// assignJobs extracts titles and reserves one output name per record.
// Sibling papers sharing a sanitized title get " (2)", " (3)"… suffixes so
// they never clobber each other within a run.
func assignJobs(records []types.PaperRecord) []job {
	jobs := make([]job, len(records))
	used := make(map[string]int)

	for i, rec := range records {
		title := corpus.ExtractTitle(rec.Text)
		base := corpus.SanitizeFilename(title)
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s (%d)", base, n)
		}
		jobs[i] = job{record: rec, title: title, fileBase: base}
	}
	return jobs
}

// runSequential processes jobs one at a time in corpus order.
func runSequential(ctx context.Context, backend summarize.Backend, renderer render.Renderer, limiter *rate.Limiter, cfg types.DigestConfig, jobs []job, w io.Writer) []types.Outcome {
	outcomes := make([]types.Outcome, len(jobs))
	for i, jb := range jobs {
		fmt.Fprintf(w, "digesting %s\n", jb.title)
		outcomes[i] = processOne(ctx, backend, renderer, limiter, cfg.OutputDir, jb)
		logOutcome(w, outcomes[i])
	}
	return outcomes
}

// runPool processes jobs with a bounded worker pool. Outcomes keep corpus
// order; one paper's failure never cancels another's processing.
func runPool(ctx context.Context, backend summarize.Backend, renderer render.Renderer, limiter *rate.Limiter, cfg types.DigestConfig, jobs []job, w io.Writer) []types.Outcome {
	outcomes := make([]types.Outcome, len(jobs))
	indexes := make(chan int)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for n := 0; n < cfg.Workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = processOne(ctx, backend, renderer, limiter, cfg.OutputDir, jobs[i])
				mu.Lock()
				logOutcome(w, outcomes[i])
				mu.Unlock()
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return outcomes
}

// processOne summarizes and renders a single paper. Failures are converted
// to a failed Outcome, never returned.
func processOne(ctx context.Context, backend summarize.Backend, renderer render.Renderer, limiter *rate.Limiter, outDir string, jb job) types.Outcome {
	outcome := types.Outcome{Index: jb.record.Index, Title: jb.title}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			outcome.Status = types.StatusFailed
			outcome.Reason = err.Error()
			return outcome
		}
	}

	summary, err := backend.Summarize(ctx, jb.record.Text)
	if err != nil {
		outcome.Status = types.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	path, err := render.Write(renderer, outDir, jb.fileBase, render.NewDocument(jb.title, summary))
	if err != nil {
		outcome.Status = types.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = types.StatusSucceeded
	outcome.OutputPath = path
	return outcome
}

// logOutcome prints one per-paper progress line.
func logOutcome(w io.Writer, o types.Outcome) {
	if o.Status == types.StatusSucceeded {
		fmt.Fprintf(w, "digested %s -> %s\n", o.Title, o.OutputPath)
		return
	}
	fmt.Fprintf(w, "failed  %s: %s\n", o.Title, o.Reason)
}

// writeReportFile marshals the report to {outputDir}/report.yaml.
func writeReportFile(outputDir string, report *types.Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(filepath.Join(outputDir, reportFile), data, 0o644)
}

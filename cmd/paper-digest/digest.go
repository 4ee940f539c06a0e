// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/render"
	"github.com/pdiddy/paper-digest/internal/report"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize every paper in a delimited corpus file",
	Long: `Digest reads a corpus file of papers separated by delimiter lines
(runs of '=' characters), extracts each paper's title, summarizes its
content through the configured model endpoint, and writes one document
per paper to the output directory.

A failed paper is reported and skipped; the batch continues. The run is
recorded in the history database and a report.yaml is written alongside
the summaries.`,
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	renderer, err := render.New(cfg.Render)
	if err != nil {
		return err
	}
	backend := summarize.NewOllama(cfg.Summary)

	ctx := context.Background()
	rep, err := digest.Run(ctx, backend, renderer, cfg.Digest, os.Stdout)
	if err != nil {
		return err
	}

	if recordErr := recordRun(ctx, cfg.Digest.OutputDir, rep); recordErr != nil {
		fmt.Fprintf(os.Stderr, "warning: history record failed: %v\n", recordErr)
	}

	if rep.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", rep.Failed())
	}
	return nil
}

// pipelineConfig assembles the stage configurations from flags, the config
// file, and the environment, in that precedence order.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	outputDir := stringSetting(cmd, "output-dir", "digest.output_dir")

	return types.PipelineConfig{
		Summary: types.SummaryConfig{
			Model:   stringSetting(cmd, "model", "summary.model"),
			Host:    stringSetting(cmd, "host", "summary.host"),
			APIKey:  secretDefault("summarizer-api-key", stringSetting(cmd, "api-key", "summary.api_key")),
			Timeout: timeout,
		},
		Render: types.RenderConfig{
			Format:    types.OutputFormat(stringSetting(cmd, "format", "render.format")),
			OutputDir: outputDir,
		},
		Digest: types.DigestConfig{
			InputFile:         stringSetting(cmd, "input", "digest.input_file"),
			OutputDir:         outputDir,
			Workers:           intSetting(cmd, "workers", "digest.workers"),
			RequestsPerMinute: intSetting(cmd, "rate", "digest.requests_per_minute"),
		},
	}
}

// recordRun appends the run to the history database in the output directory.
func recordRun(ctx context.Context, outputDir string, rep *types.Report) error {
	store, err := report.Open(outputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Record(ctx, rep)
	return err
}

func init() {
	digestCmd.Flags().String("input", "research_content.txt", "corpus file to digest")
	digestCmd.Flags().String("output-dir", "summaries", "directory for rendered summaries")
	digestCmd.Flags().String("format", "pdf", "output format: pdf or markdown")
	digestCmd.Flags().String("model", "llama2:latest", "model identifier for summarization")
	digestCmd.Flags().String("host", summarize.DefaultHost, "base URL of the model-serving endpoint")
	digestCmd.Flags().String("api-key", "", "bearer token for proxied endpoints (overrides .secrets/)")
	digestCmd.Flags().Duration("timeout", 5*time.Minute, "per-paper summarization timeout")
	digestCmd.Flags().Int("workers", 1, "concurrent papers (1 = sequential)")
	digestCmd.Flags().Int("rate", 0, "summarization requests per minute (0 = unlimited)")

	rootCmd.AddCommand(digestCmd)
}

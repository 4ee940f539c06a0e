// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/fetch"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query]",
	Short: "Build a corpus file from recent arXiv papers",
	Long: `Fetch searches arXiv for the newest papers matching a query, downloads
each paper's PDF, extracts its text, and writes a delimited corpus file
that the digest command can consume.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	query := stringSetting(cmd, "query", "fetch.query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if query == "" {
		return fmt.Errorf("query required: pass it as an argument or with --query")
	}

	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "paper-digest/" + version,
		},
		Query:         query,
		MaxResults:    intSetting(cmd, "max-results", "fetch.max_results"),
		DownloadDelay: delay,
		OutFile:       stringSetting(cmd, "out", "fetch.out_file"),
	}

	client := &http.Client{Timeout: timeout}
	result, err := fetch.BuildCorpus(context.Background(), client, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.Fetched == 0 {
		return fmt.Errorf("all %d paper(s) failed to download", result.Failed)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("query", "", "arXiv search query")
	fetchCmd.Flags().Int("max-results", 3, "maximum number of papers to fetch")
	fetchCmd.Flags().String("out", "research_content.txt", "corpus file to write")
	fetchCmd.Flags().Duration("delay", 1*time.Second, "pause between PDF downloads")
	fetchCmd.Flags().Duration("timeout", 2*time.Minute, "per-request HTTP timeout")

	rootCmd.AddCommand(fetchCmd)
}

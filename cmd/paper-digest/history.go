// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/report"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past digest runs and their per-paper outcomes",
	Long: `History reads the run database in the output directory. Without flags it
lists recent runs, newest first. With --run it shows that run's per-paper
outcomes.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	outputDir := stringSetting(cmd, "output-dir", "digest.output_dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	runID, _ := cmd.Flags().GetInt64("run")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := report.Open(outputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if runID > 0 {
		outcomes, err := store.Outcomes(ctx, runID)
		if err != nil {
			return err
		}
		return formatOutcomes(outcomes, jsonOutput)
	}

	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	return formatRuns(runs, jsonOutput)
}

func formatRuns(runs []report.RunRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-30s  %-10s  %s\n",
		"Run", "Started", "Input", "Succeeded", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range runs {
		input := r.InputFile
		if len(input) > 30 {
			input = input[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-30s  %-10d  %d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), input, r.Succeeded, r.Failed)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func formatOutcomes(outcomes []types.Outcome, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	if len(outcomes) == 0 {
		fmt.Println("No outcomes for that run.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-9s  %s\n", "#", "Title", "Status", "Output / Reason")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, o := range outcomes {
		title := o.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		detail := o.OutputPath
		if o.Status == types.StatusFailed {
			detail = o.Reason
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-9s  %s\n", o.Index, title, o.Status, detail)
	}

	return nil
}

func init() {
	historyCmd.Flags().String("output-dir", "summaries", "directory holding the run database")
	historyCmd.Flags().Int64("run", 0, "show per-paper outcomes for one run ID")
	historyCmd.Flags().Int("limit", 10, "maximum runs to list (0 = all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

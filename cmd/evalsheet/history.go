// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evalsheet/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show locally recorded submission attempts",
	Long: `History lists the submission attempts recorded in the local journal,
newest first. The journal is a client-side audit trail; for the server's
record of completed evaluations use "results list".`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum number of entries (default from config)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := journal.Open(loadConfig().Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No submissions recorded yet.")
		return nil
	}

	fmt.Fprintf(w, "%-18s  %-25s  %-8s  %-10s  %-9s  %s\n",
		"Submitted", "File", "Answer", "Status", "Score", "Reason")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		score := "-"
		if e.Scored {
			score = fmt.Sprintf("%.2f%%", e.Score)
		}
		fmt.Fprintf(w, "%-18s  %-25s  %-8d  %-10s  %-9s  %s\n",
			e.SubmittedAt.Local().Format("2006-01-02 15:04"),
			truncate(e.FileName, 25), e.ModelAnswerID, e.Status, score,
			truncate(e.Reason, 35))
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evalsheet/internal/journal"
	"github.com/pdiddy/evalsheet/internal/workflow"
	"github.com/pdiddy/evalsheet/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file>",
	Short: "Upload an answer sheet and evaluate it against a model answer",
	Long: `Evaluate uploads one student answer sheet (JPG, PNG, or PDF), then asks
the service to OCR it and score it against the selected model answer. The
result, including the explainable breakdown when the server provides one,
is printed on success.

Use "answers list" to find model answer ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().Int("model-answer", 0, "id of the model answer to score against (required)")
	evaluateCmd.MarkFlagRequired("model-answer")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	answerID, _ := cmd.Flags().GetInt("model-answer")
	cfg := loadConfig()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening answer sheet: %w", err)
	}
	defer f.Close()
	fileName := filepath.Base(args[0])

	ctrl := workflow.New(newClient(cfg))
	ctrl.SelectFile(fileName, f)
	ctrl.SelectModelAnswer(answerID)

	outcome, err := ctrl.Submit(cmd.Context())
	if err != nil {
		return err
	}

	switch outcome.Status {
	case workflow.StatusValidation:
		return fmt.Errorf("nothing submitted: %s", outcome.Message)
	case workflow.StatusNetwork:
		recordAttempt(cmd, cfg, journal.Entry{
			FileName:      fileName,
			ModelAnswerID: answerID,
			Status:        journal.StatusFailed,
			Reason:        outcome.Message,
		})
		return fmt.Errorf("evaluation failed: %s", outcome.Message)
	}

	out := outcome.Output
	recordAttempt(cmd, cfg, journal.Entry{
		FileName:      fileName,
		ModelAnswerID: answerID,
		Status:        journal.StatusSucceeded,
		Score:         out.Score,
		Scored:        out.Scored,
	})

	printOutput(cmd.OutOrStdout(), *out)
	return nil
}

// recordAttempt appends the attempt to the local journal. Journal problems
// are warnings, never a reason to fail the evaluation itself.
func recordAttempt(cmd *cobra.Command, cfg types.ClientConfig, e journal.Entry) {
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not open journal: %v\n", err)
		return
	}
	defer j.Close()

	if err := j.Record(cmd.Context(), e); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record attempt: %v\n", err)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evalsheet/internal/api"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Manage model answers on the evaluation service",
	Long: `Answers manages the reference answers that student sheets are scored
against. Each model answer has a question title and the full reference
text; evaluations refer to a model answer by its id.`,
}

// --- list subcommand ---

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List model answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		answers, err := newClient(loadConfig()).ListModelAnswers(cmd.Context())
		if err != nil {
			return err
		}
		if len(answers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No model answers yet. Create one with \"answers create\".")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-6s  %-40s  %s\n", "ID", "Question", "Answer text")
		fmt.Fprintln(w, strings.Repeat("-", 90))
		for _, a := range answers {
			fmt.Fprintf(w, "%-6d  %-40s  %s\n", a.ID, truncate(a.QuestionTitle, 40), truncate(a.ModelText, 40))
		}
		return nil
	},
}

// --- create subcommand ---

var answersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a model answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		text, _ := cmd.Flags().GetString("text")

		created, err := newClient(loadConfig()).CreateModelAnswer(cmd.Context(), api.ModelAnswerDraft{
			QuestionTitle: title,
			ModelText:     text,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created model answer %d: %s\n", created.ID, created.QuestionTitle)
		return nil
	},
}

// --- update subcommand ---

var answersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a model answer's title and text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid model answer id %q", args[0])
		}
		title, _ := cmd.Flags().GetString("title")
		text, _ := cmd.Flags().GetString("text")

		if err := newClient(loadConfig()).UpdateModelAnswer(cmd.Context(), id, api.ModelAnswerDraft{
			QuestionTitle: title,
			ModelText:     text,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated model answer %d.\n", id)
		return nil
	},
}

// --- delete subcommand ---

var answersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a model answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid model answer id %q", args[0])
		}
		if err := newClient(loadConfig()).DeleteModelAnswer(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted model answer %d.\n", id)
		return nil
	},
}

func init() {
	answersCreateCmd.Flags().String("title", "", "question title (required)")
	answersCreateCmd.Flags().String("text", "", "full model answer text (required)")
	answersCreateCmd.MarkFlagRequired("title")
	answersCreateCmd.MarkFlagRequired("text")

	answersUpdateCmd.Flags().String("title", "", "question title (required)")
	answersUpdateCmd.Flags().String("text", "", "full model answer text (required)")
	answersUpdateCmd.MarkFlagRequired("title")
	answersUpdateCmd.MarkFlagRequired("text")

	answersCmd.AddCommand(answersListCmd, answersCreateCmd, answersUpdateCmd, answersDeleteCmd)
	rootCmd.AddCommand(answersCmd)
}

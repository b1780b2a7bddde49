// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evalsheet/internal/browser"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse historical evaluation results",
	Long: `Results lists past evaluations stored on the service, shows per-result
details including the explainable breakdown, deletes records, and exports
the current listing to a YAML file.`,
}

// --- list subcommand ---

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all evaluation results",
	RunE:  runResultsList,
}

func runResultsList(cmd *cobra.Command, args []string) error {
	b := newBrowser(cmd)
	records, err := b.List(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printRecordTable(cmd.OutOrStdout(), records)
	return nil
}

// --- show subcommand ---

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one result in full, including the explainable breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid result id %q", args[0])
	}

	b := newBrowser(cmd)
	if _, err := b.List(cmd.Context()); err != nil {
		return err
	}

	rec, err := b.Detail(id)
	if err != nil {
		return err
	}
	printRecordDetail(cmd.OutOrStdout(), rec)
	return nil
}

// --- delete subcommand ---

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one result after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsDelete,
}

func runResultsDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid result id %q", args[0])
	}

	b := newBrowser(cmd)
	records, err := b.Delete(cmd.Context(), id)
	if errors.Is(err, browser.ErrDeleteDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted result %d.\n\n", id)
	printRecordTable(cmd.OutOrStdout(), records)
	return nil
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all results to a YAML file",
	RunE:  runResultsExport,
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	b := newBrowser(cmd)
	records, err := b.List(cmd.Context())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d result(s) to %s\n", len(records), out)
	return nil
}

func init() {
	resultsListCmd.Flags().Bool("json", false, "output results as JSON")
	resultsDeleteCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	resultsExportCmd.Flags().String("out", "results.yaml", "output file path")

	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsDeleteCmd, resultsExportCmd)
	rootCmd.AddCommand(resultsCmd)
}

// newBrowser builds a Browser whose confirmer prompts on the command's
// streams, honoring --yes where the flag exists.
func newBrowser(cmd *cobra.Command) *browser.Browser {
	confirm := browser.ConfirmerFunc(func(prompt string) bool {
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			return true
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
	return browser.New(newClient(loadConfig()), confirm)
}

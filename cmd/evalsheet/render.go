// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/evalsheet/pkg/types"
)

// scoreString formats a score with two-decimal precision, or a placeholder
// when the server supplied no usable score.
func scoreString(out types.EvaluationOutput) string {
	if !out.Scored {
		return "unscored"
	}
	return fmt.Sprintf("%.2f%%", out.Score)
}

// printOutput writes one evaluation result in full.
func printOutput(w io.Writer, out types.EvaluationOutput) {
	fmt.Fprintf(w, "OCR engine: %s\n", out.OCREngine)
	fmt.Fprintf(w, "Language:   %s\n", out.Language)
	fmt.Fprintf(w, "Score:      %s\n", scoreString(out))
	fmt.Fprintf(w, "Feedback:   %s\n", out.Feedback)

	fmt.Fprintln(w, "\nExtracted text:")
	fmt.Fprintln(w, indent(out.ExtractedText))

	fmt.Fprintln(w, "\nMissing keywords:")
	if len(out.MissingKeywords) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, kw := range out.MissingKeywords {
		fmt.Fprintf(w, "  - %s\n", kw)
	}

	fmt.Fprintln(w, "\nExplainable breakdown:")
	printExplainable(w, out.Explainable)
}

// printExplainable writes the breakdown, or the distinct message for
// records that predate explainable output. Never a blank section.
func printExplainable(w io.Writer, exp *types.ExplainableResult) {
	if exp == nil {
		fmt.Fprintln(w, "  Not available for this result. Evaluate again to generate explainable output.")
		return
	}

	fmt.Fprintf(w, "  Similarity:   %.2f\n", exp.Similarity)
	fmt.Fprintf(w, "  Length ratio: %.2f\n", exp.LengthRatio)
	fmt.Fprintf(w, "  Explanation:  %s\n", exp.Explanation)

	fmt.Fprintln(w, "  Matched points:")
	if len(exp.Matched) == 0 {
		fmt.Fprintln(w, "    none")
	}
	for _, m := range exp.Matched {
		fmt.Fprintf(w, "    %.2f  %s\n", m.Similarity, m.ModelSentence)
		if m.StudentSentence != "" {
			fmt.Fprintf(w, "          student: %s\n", m.StudentSentence)
		}
	}

	fmt.Fprintln(w, "  Missing points:")
	if len(exp.Missing) == 0 {
		fmt.Fprintln(w, "    none")
	}
	for _, m := range exp.Missing {
		fmt.Fprintf(w, "    - %s\n", m)
	}
}

// printRecordTable writes historical records as a human-readable table.
func printRecordTable(w io.Writer, records []types.HistoricalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results yet. Upload and evaluate an answer sheet first.")
		return
	}

	fmt.Fprintf(w, "%-6s  %-9s  %-10s  %-8s  %-30s  %s\n",
		"ID", "Score", "Engine", "Lang", "Feedback", "Extracted text")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range records {
		fmt.Fprintf(w, "%-6d  %-9s  %-10s  %-8s  %-30s  %s\n",
			r.ID,
			scoreString(r.Output),
			r.Output.OCREngine,
			r.Output.Language,
			truncate(r.Output.Feedback, 30),
			truncate(r.Output.ExtractedText, 40))
	}
	fmt.Fprintf(w, "\nTotal results: %d\n", len(records))
}

// printRecordDetail writes one historical record in full.
func printRecordDetail(w io.Writer, rec types.HistoricalRecord) {
	fmt.Fprintf(w, "Result %d\n", rec.ID)
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:    %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "File:       %s\n", rec.FilePath)
	fmt.Fprintf(w, "Answer id:  %d\n\n", rec.ModelAnswerID)
	printOutput(w, rec.Output)
}

// truncate shortens s to at most n display runes. OCR output is routinely
// non-ASCII, so the cut must never split a multi-byte rune.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func indent(s string) string {
	if s == "" {
		return "  (empty)"
	}
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package result normalizes evaluation responses of uncertain shape into the
// canonical EvaluationOutput structure.
//
// The evaluation service has returned results in several shapes over time:
// fresh evaluate responses carry the extracted text under "text" and missing
// keywords as a JSON array, while historical records use "extracted_text"
// and a comma-joined keyword string. The explainable breakdown may be a
// structured "explainable_ai" object, a serialized JSON string under
// "explainable_output", or absent entirely for records that predate the
// feature. Normalize resolves the whole compatibility matrix in one place
// and never fails: malformed input degrades to zero values and an
// unavailable breakdown, not an error.
package result

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/evalsheet/pkg/types"
)

// Normalize converts one raw evaluation result into the canonical shape.
// It is total: any input, including malformed JSON, produces a usable
// EvaluationOutput. MissingKeywords is never nil.
func Normalize(raw json.RawMessage) types.EvaluationOutput {
	out := types.EvaluationOutput{MissingKeywords: []string{}}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out
	}

	out.OCREngine = stringField(fields, "ocr_engine")
	out.Language = stringField(fields, "language")
	out.Feedback = stringField(fields, "feedback")

	// Fresh evaluate responses use "text", historical records "extracted_text".
	out.ExtractedText = stringField(fields, "text")
	if out.ExtractedText == "" {
		out.ExtractedText = stringField(fields, "extracted_text")
	}

	out.Score, out.Scored = scoreField(fields["score"])
	out.MissingKeywords = keywordList(fields["missing_keywords"])
	out.Explainable = explainableField(fields)

	return out
}

// NormalizeRecord converts one raw historical record into a HistoricalRecord,
// normalizing the embedded evaluation result. Like Normalize it is total.
func NormalizeRecord(raw json.RawMessage) types.HistoricalRecord {
	rec := types.HistoricalRecord{Output: Normalize(raw)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec
	}

	rec.ID = intField(fields, "id")
	rec.FilePath = stringField(fields, "file_path")
	rec.ModelAnswerID = intField(fields, "model_answer_id")
	rec.CreatedAt = timeField(fields, "created_at")

	return rec
}

// explainableField resolves the explainable portion of a raw result.
//
// Resolution order: a structured "explainable_ai" object wins; otherwise a
// serialized "explainable_output" string is parsed. Absent, empty, or
// unparsable data yields nil (unavailable), never an error.
func explainableField(fields map[string]json.RawMessage) *types.ExplainableResult {
	if data, ok := fields["explainable_ai"]; ok {
		if exp := parseExplainable(data); exp != nil {
			return exp
		}
	}

	var serialized string
	if err := json.Unmarshal(fields["explainable_output"], &serialized); err != nil {
		return nil
	}
	if strings.TrimSpace(serialized) == "" {
		return nil
	}
	return parseExplainable([]byte(serialized))
}

// parseExplainable decodes a JSON object into an ExplainableResult. It
// returns nil on any decode failure or non-object input, and guarantees
// non-nil Matched and Missing slices on success.
func parseExplainable(data []byte) *types.ExplainableResult {
	var exp types.ExplainableResult
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil
	}
	// json.Unmarshal accepts the literal null without touching exp;
	// treat it as absent rather than an empty breakdown.
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}
	if exp.Matched == nil {
		exp.Matched = []types.MatchedPoint{}
	}
	if exp.Missing == nil {
		exp.Missing = []string{}
	}
	return &exp
}

// keywordList decodes missing keywords from either a JSON array (fresh
// responses) or a comma-joined string (historical storage format). Absence
// or any other shape yields an empty list.
func keywordList(data json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil && list != nil {
		return list
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return []string{}
	}

	out := []string{}
	for _, kw := range strings.Split(joined, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// scoreField coerces a score value to float64. JSON numbers and numeric
// strings count as scored; anything else is the defined unscored marker
// (false), never NaN.
func scoreField(data json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// stringField returns the named field as a string, or "" when absent or of
// another type.
func stringField(fields map[string]json.RawMessage, name string) string {
	var s string
	if err := json.Unmarshal(fields[name], &s); err != nil {
		return ""
	}
	return s
}

// intField returns the named field as an int, truncating fractional values,
// or 0 when absent or non-numeric.
func intField(fields map[string]json.RawMessage, name string) int {
	var f float64
	if err := json.Unmarshal(fields[name], &f); err != nil {
		return 0
	}
	return int(f)
}

// creation timestamp layouts the service has emitted: RFC 3339 and a naive
// ISO form without a zone offset.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

// timeField parses the named field as a creation timestamp. Absence or an
// unrecognized layout yields the zero time.
func timeField(fields map[string]json.RawMessage, name string) time.Time {
	var s string
	if err := json.Unmarshal(fields[name], &s); err != nil {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

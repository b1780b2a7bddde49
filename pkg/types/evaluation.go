// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures and configuration for the
// evalsheet client.
package types

import "time"

// ModelAnswer is a reference answer stored on the evaluation service.
// The client uses it as a selection key for evaluations and manages it
// through the model-answer CRUD operations.
type ModelAnswer struct {
	// ID is the server-assigned identifier.
	ID int `json:"id" yaml:"id"`

	// QuestionTitle is the short title shown in selection lists.
	QuestionTitle string `json:"question_title" yaml:"question_title"`

	// ModelText is the full reference answer text. Empty in listings that
	// only carry selection metadata.
	ModelText string `json:"model_text,omitempty" yaml:"model_text,omitempty"`

	// CreatedAt is when the answer was created on the server.
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

// MatchedPoint is one content point of the model answer that the student's
// answer covered, with the sentence-level similarity that matched it.
type MatchedPoint struct {
	// Similarity is the sentence-pair similarity in [0, 1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// ModelSentence is the sentence from the model answer.
	ModelSentence string `json:"model_sentence" yaml:"model_sentence"`

	// StudentSentence is the best-matching student sentence. May be empty
	// when the server omits it.
	StudentSentence string `json:"student_sentence,omitempty" yaml:"student_sentence,omitempty"`
}

// ExplainableResult is the structured breakdown of a score into matched and
// missing content points plus a natural-language explanation.
//
// A nil *ExplainableResult means the breakdown is unavailable for a record
// (generated before the feature existed, or stored in a form that could not
// be parsed). That is distinct from a present but empty breakdown, which is
// a valid outcome.
type ExplainableResult struct {
	// Similarity is the overall semantic similarity in [0, 1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// LengthRatio is the student/model answer length ratio.
	LengthRatio float64 `json:"length_ratio" yaml:"length_ratio"`

	// Explanation is the natural-language summary of the scoring.
	Explanation string `json:"explanation" yaml:"explanation"`

	// Matched lists covered content points in server order. Never nil.
	Matched []MatchedPoint `json:"matched" yaml:"matched"`

	// Missing lists uncovered content points in server order. Never nil.
	Missing []string `json:"missing" yaml:"missing"`
}

// EvaluationOutput is the canonical in-memory shape of one evaluation result
// after normalization. Fresh evaluate responses and historical records both
// reduce to this shape.
type EvaluationOutput struct {
	// OCREngine identifies the engine that extracted the text (e.g. "trocr").
	OCREngine string `json:"ocr_engine" yaml:"ocr_engine"`

	// Language is the detected answer language.
	Language string `json:"language" yaml:"language"`

	// Score is the semantic score in [0, 100]. Meaningful only when Scored
	// is true.
	Score float64 `json:"score" yaml:"score"`

	// Scored reports whether the server supplied a usable numeric score.
	// When false the presentation layer shows an unscored placeholder.
	Scored bool `json:"scored" yaml:"scored"`

	// Feedback is the generated feedback text.
	Feedback string `json:"feedback" yaml:"feedback"`

	// ExtractedText is the OCR output for the answer sheet.
	ExtractedText string `json:"extracted_text" yaml:"extracted_text"`

	// MissingKeywords lists keywords absent from the student answer, in
	// server order. Never nil.
	MissingKeywords []string `json:"missing_keywords" yaml:"missing_keywords"`

	// Explainable is the structured breakdown, or nil when unavailable.
	Explainable *ExplainableResult `json:"explainable,omitempty" yaml:"explainable,omitempty"`
}

// HistoricalRecord is a persisted evaluation fetched from the result store.
// Records are never mutated locally; the snapshot they belong to is replaced
// wholesale on every fetch.
type HistoricalRecord struct {
	// ID is the server-assigned record identifier.
	ID int `json:"id" yaml:"id"`

	// FilePath is the server-side path of the evaluated upload.
	FilePath string `json:"file_path" yaml:"file_path"`

	// ModelAnswerID references the model answer the sheet was scored against.
	ModelAnswerID int `json:"model_answer_id" yaml:"model_answer_id"`

	// CreatedAt is when the record was created on the server. Zero when the
	// server omits it.
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`

	// Output is the normalized evaluation result.
	Output EvaluationOutput `json:"output" yaml:"output"`
}

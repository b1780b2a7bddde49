// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow owns the evaluation submission state machine: select a
// file and a model answer, upload the file, evaluate it against the model
// answer, and surface the normalized result. One Controller runs at most
// one upload-then-evaluate pipeline at a time; the evaluate call is never
// issued before the upload's success is observed.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/evalsheet/internal/result"
	"github.com/pdiddy/evalsheet/pkg/types"
)

// State identifies a phase of the submission pipeline.
type State string

const (
	// StateIdle means no submission is running and none has completed
	// since the last reset.
	StateIdle State = "idle"

	// StateUploading means the file upload is in flight.
	StateUploading State = "uploading"

	// StateEvaluating means the upload succeeded and the evaluate call is
	// in flight.
	StateEvaluating State = "evaluating"

	// StateSucceeded means the last submission produced a normalized
	// evaluation result.
	StateSucceeded State = "succeeded"

	// StateFailed means the last submission failed during upload or
	// evaluation.
	StateFailed State = "failed"
)

// Status discriminates submission outcomes for the presentation layer.
type Status string

const (
	// StatusSuccess means the pipeline completed and Output is set.
	StatusSuccess Status = "success"

	// StatusValidation means the submission was rejected before any
	// network call: the caller forgot to select something.
	StatusValidation Status = "validation_error"

	// StatusNetwork means the upload or evaluate call failed at the
	// network or server level.
	StatusNetwork Status = "network_error"
)

// Outcome is the result of one Submit call.
type Outcome struct {
	// Status discriminates the outcome.
	Status Status

	// Message is the user-facing explanation for validation and network
	// outcomes.
	Message string

	// Output is the normalized evaluation result; set only on success.
	Output *types.EvaluationOutput
}

// ErrSubmissionInFlight is returned by Submit and Reset while a pipeline is
// already running. The caller retries after the running submission resolves;
// no additional network calls are made.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Service is the remote evaluation service as the workflow sees it.
type Service interface {
	// Upload stores the answer-sheet file and returns its server-side path.
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)

	// Evaluate scores a previously uploaded file against a model answer
	// and returns the raw response for normalization.
	Evaluate(ctx context.Context, filePath string, modelAnswerID int) (json.RawMessage, error)
}

// Controller sequences the two-step submission and tracks its state. Each
// active workflow owns its own Controller instance, so independent
// workflows never interfere. All methods are safe for concurrent use.
type Controller struct {
	svc Service

	mu            sync.Mutex
	state         State
	fileName      string
	fileSource    io.Reader
	fileData      []byte
	modelAnswerID int
	output        *types.EvaluationOutput
	failure       string

	resultReady func(types.EvaluationOutput)
}

// New returns a Controller in the Idle state.
func New(svc Service) *Controller {
	return &Controller{svc: svc, state: StateIdle}
}

// OnResultReady registers a hook fired after a successful submission, once
// the normalized output is stored. The presentation layer uses it to bring
// the result into view.
func (c *Controller) OnResultReady(fn func(types.EvaluationOutput)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resultReady = fn
}

// SelectFile sets the answer-sheet file for the next submission. The reader
// is consumed once, on the first Submit; later submissions of the same
// selection reuse the buffered content, so re-invoking Submit after a
// failure resends the full file.
func (c *Controller) SelectFile(name string, r io.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fileName = name
	c.fileSource = r
	c.fileData = nil
}

// SelectModelAnswer sets the model answer for the next submission.
func (c *Controller) SelectModelAnswer(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelAnswerID = id
}

// State returns the current pipeline state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Output returns the normalized result of the last successful submission,
// or nil.
func (c *Controller) Output() *types.EvaluationOutput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// FailureReason returns the reason of the last failed submission, or "".
func (c *Controller) FailureReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Reset clears the selection and returns to Idle. It fails with
// ErrSubmissionInFlight while a pipeline is running; a submission, once
// started, runs to completion.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight() {
		return ErrSubmissionInFlight
	}
	c.state = StateIdle
	c.fileName = ""
	c.fileSource = nil
	c.fileData = nil
	c.modelAnswerID = 0
	c.output = nil
	c.failure = ""
	return nil
}

// Submit runs the upload-then-evaluate pipeline for the current selection.
//
// A missing file or model answer rejects the submission synchronously with
// a validation outcome and no network call. While a pipeline is running,
// Submit returns ErrSubmissionInFlight without issuing any network calls.
// Both upload and evaluate failures are terminal for the attempt; there is
// no automatic retry and the user re-invokes Submit.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.inFlight() {
		c.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	}

	if (c.fileSource == nil && c.fileData == nil) || c.fileName == "" {
		c.mu.Unlock()
		return Outcome{Status: StatusValidation, Message: "no answer-sheet file selected"}, nil
	}
	if c.modelAnswerID <= 0 {
		c.mu.Unlock()
		return Outcome{Status: StatusValidation, Message: "no model answer selected"}, nil
	}

	name, source, data, answerID := c.fileName, c.fileSource, c.fileData, c.modelAnswerID
	c.state = StateUploading
	c.output = nil
	c.failure = ""
	c.mu.Unlock()

	// The selected reader is drained exactly once; later submissions of the
	// same selection resend the buffered bytes.
	if data == nil {
		buf, err := io.ReadAll(source)
		c.mu.Lock()
		// A partially drained reader must not feed a later attempt.
		c.fileSource = nil
		if err == nil {
			c.fileData = buf
		}
		c.mu.Unlock()
		if err != nil {
			return c.fail(fmt.Errorf("reading %s: %w", name, err)), nil
		}
		data = buf
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Str("file", name).Int("model_answer_id", answerID).Msg("uploading")

	path, err := c.svc.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		return c.fail(err), nil
	}

	c.mu.Lock()
	c.state = StateEvaluating
	c.mu.Unlock()
	log.Debug().Str("path", path).Msg("evaluating")

	raw, err := c.svc.Evaluate(ctx, path, answerID)
	if err != nil {
		return c.fail(err), nil
	}

	output := result.Normalize(raw)

	c.mu.Lock()
	c.state = StateSucceeded
	c.output = &output
	ready := c.resultReady
	c.mu.Unlock()

	if ready != nil {
		ready(output)
	}
	return Outcome{Status: StatusSuccess, Output: &output}, nil
}

// fail records a terminal network failure and builds its outcome. The
// message carries the server's structured detail when the service supplied
// one (APIError surfaces it through Error()).
func (c *Controller) fail(err error) Outcome {
	c.mu.Lock()
	c.state = StateFailed
	c.failure = err.Error()
	c.mu.Unlock()
	return Outcome{Status: StatusNetwork, Message: err.Error()}
}

// inFlight reports whether a pipeline is running. Callers hold c.mu.
func (c *Controller) inFlight() bool {
	return c.state == StateUploading || c.state == StateEvaluating
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/evalsheet/internal/api"
	"github.com/pdiddy/evalsheet/pkg/types"
)

// fakeService counts calls and lets tests script upload/evaluate behavior.
type fakeService struct {
	uploads int32
	evals   int32

	uploadPath string
	uploadErr  error
	evalRaw    json.RawMessage
	evalErr    error

	// When set, Upload signals uploadStarted and blocks until release is
	// closed. Used to hold a pipeline in flight.
	uploadStarted chan struct{}
	release       chan struct{}
}

func (f *fakeService) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	atomic.AddInt32(&f.uploads, 1)
	if f.uploadStarted != nil {
		f.uploadStarted <- struct{}{}
		<-f.release
	}
	return f.uploadPath, f.uploadErr
}

func (f *fakeService) Evaluate(_ context.Context, _ string, _ int) (json.RawMessage, error) {
	atomic.AddInt32(&f.evals, 1)
	return f.evalRaw, f.evalErr
}

// --- Validation ---

func TestSubmit_MissingFileIsValidationError(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)
	c.SelectModelAnswer(5)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusValidation, out.Status)
	assert.Contains(t, out.Message, "file")
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, atomic.LoadInt32(&svc.uploads), "no network call on validation failure")
	assert.Zero(t, atomic.LoadInt32(&svc.evals))
}

func TestSubmit_MissingModelAnswerIsValidationError(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusValidation, out.Status)
	assert.Contains(t, out.Message, "model answer")
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, atomic.LoadInt32(&svc.uploads))
}

// --- Sequencing ---

func TestSubmit_SuccessPipeline(t *testing.T) {
	svc := &fakeService{
		uploadPath: "/u/1.png",
		evalRaw:    json.RawMessage(`{"score": 87.5, "feedback": "Good", "text": "..."}`),
	}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	var readyOutput *types.EvaluationOutput
	c.OnResultReady(func(o types.EvaluationOutput) { readyOutput = &o })

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, out.Status)
	require.NotNil(t, out.Output)
	assert.Equal(t, 87.5, out.Output.Score)
	assert.True(t, out.Output.Scored)
	assert.Equal(t, StateSucceeded, c.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.uploads))
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.evals))

	require.NotNil(t, readyOutput, "result-ready hook must fire on success")
	assert.Equal(t, 87.5, readyOutput.Score)
}

func TestSubmit_UploadFailureSkipsEvaluate(t *testing.T) {
	svc := &fakeService{uploadErr: errors.New("connection refused")}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusNetwork, out.Status)
	assert.Contains(t, out.Message, "connection refused")
	assert.Equal(t, StateFailed, c.State())
	assert.Equal(t, "connection refused", c.FailureReason())
	assert.Zero(t, atomic.LoadInt32(&svc.evals), "evaluate must not run after a failed upload")
}

func TestSubmit_EvaluateFailureCarriesServerDetail(t *testing.T) {
	svc := &fakeService{
		uploadPath: "/u/1.png",
		evalErr:    &api.APIError{StatusCode: 404, Detail: "Model answer not found"},
	}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(99)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusNetwork, out.Status)
	assert.Equal(t, "Model answer not found", out.Message)
	assert.Equal(t, StateFailed, c.State())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestSubmit_FileReadFailureClearsSelection(t *testing.T) {
	svc := &fakeService{uploadPath: "/u/1.png"}
	c := New(svc)
	c.SelectFile("sheet.png", failingReader{})
	c.SelectModelAnswer(3)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNetwork, out.Status)
	assert.Contains(t, out.Message, "disk error")
	assert.Zero(t, atomic.LoadInt32(&svc.uploads), "nothing to upload after a failed read")

	// The broken selection is gone; the next submit asks for a new file
	// instead of resending a partial buffer.
	out, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusValidation, out.Status)
}

// --- In-flight guard ---

func TestSubmit_SecondSubmitWhileInFlightIsNoOp(t *testing.T) {
	svc := &fakeService{
		uploadPath:    "/u/1.png",
		evalRaw:       json.RawMessage(`{"score": 50}`),
		uploadStarted: make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := c.Submit(context.Background())
		done <- out
	}()

	// Wait until the first submission is holding the upload.
	select {
	case <-svc.uploadStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never started uploading")
	}
	assert.Equal(t, StateUploading, c.State())

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.uploads), "second submit must not call the service")

	// Reset is also refused mid-flight.
	assert.ErrorIs(t, c.Reset(), ErrSubmissionInFlight)

	close(svc.release)
	select {
	case out := <-done:
		assert.Equal(t, StatusSuccess, out.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never resolved")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.evals))
}

// --- Reset ---

func TestReset_ClearsSelectionAndOutcome(t *testing.T) {
	svc := &fakeService{
		uploadPath: "/u/1.png",
		evalRaw:    json.RawMessage(`{"score": 70}`),
	}
	c := New(svc)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateSucceeded, c.State())
	require.NotNil(t, c.Output())

	require.NoError(t, c.Reset())
	assert.Equal(t, StateIdle, c.State())
	assert.Nil(t, c.Output())
	assert.Empty(t, c.FailureReason())

	// The cleared selection no longer satisfies the submit precondition.
	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusValidation, out.Status)
}

// --- End to end against the real API client ---

func TestSubmit_EndToEnd(t *testing.T) {
	var evalBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/files/upload":
			fmt.Fprint(w, `{"path": "/u/1.png"}`)
		case "/eval/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&evalBody))
			fmt.Fprint(w, `{
				"score": 87.5,
				"feedback": "Good",
				"text": "...",
				"explainable_ai": {
					"similarity": 0.9,
					"length_ratio": 1.1,
					"explanation": "...",
					"matched": [],
					"missing": ["term X"]
				}
			}`)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	client := api.New(types.ServiceConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "evalsheet-test/0.1"},
		BaseURL:    ts.URL,
		MaxRetries: 1,
	}, "")

	c := New(client)
	c.SelectFile("fileA.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/u/1.png", evalBody["file_path"], "evaluate must use the uploaded path")
	assert.Equal(t, float64(3), evalBody["model_answer_id"])

	require.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, StateSucceeded, c.State())
	assert.Empty(t, out.Output.MissingKeywords)
	require.NotNil(t, out.Output.Explainable)
	assert.Equal(t, []string{"term X"}, out.Output.Explainable.Missing)
}

// A failed submission is retried by re-invoking Submit on the same
// selection. The second attempt must resend the full file, not the drained
// remainder of the original reader.
func TestSubmit_ResubmitAfterFailureResendsFile(t *testing.T) {
	var uploadSizes []int
	var evalCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/files/upload":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f, _, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			uploadSizes = append(uploadSizes, len(content))
			fmt.Fprint(w, `{"path": "/u/1.png"}`)
		case "/eval/":
			if atomic.AddInt32(&evalCalls, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"detail": "scoring model crashed"}`)
				return
			}
			fmt.Fprint(w, `{"score": 70, "feedback": "ok"}`)
		}
	}))
	defer ts.Close()

	client := api.New(types.ServiceConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "evalsheet-test/0.1"},
		BaseURL:    ts.URL,
		MaxRetries: 1,
	}, "")

	c := New(client)
	c.SelectFile("sheet.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusNetwork, out.Status)
	require.Equal(t, StateFailed, c.State())

	out, err = c.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, out.Status)
	assert.True(t, out.Output.Scored)

	require.Len(t, uploadSizes, 2)
	assert.Equal(t, len("pixels"), uploadSizes[0])
	assert.Equal(t, len("pixels"), uploadSizes[1], "second upload must carry the file too")
}

func TestSubmit_EndToEndUploadWithoutPathFails(t *testing.T) {
	var evalCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/files/upload":
			fmt.Fprint(w, `{"message": "stored"}`)
		case "/eval/":
			atomic.AddInt32(&evalCalls, 1)
			fmt.Fprint(w, `{}`)
		}
	}))
	defer ts.Close()

	client := api.New(types.ServiceConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "evalsheet-test/0.1"},
		BaseURL:    ts.URL,
		MaxRetries: 1,
	}, "")

	c := New(client)
	c.SelectFile("fileA.png", strings.NewReader("pixels"))
	c.SelectModelAnswer(3)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusNetwork, out.Status)
	assert.Equal(t, StateFailed, c.State())
	assert.Zero(t, atomic.LoadInt32(&evalCalls), "evaluate must not be attempted without an upload path")
}

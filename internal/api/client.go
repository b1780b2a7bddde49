// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the HTTP client for the remote answer-sheet evaluation
// service. It covers file upload, evaluation, the result store, model-answer
// management, and authentication. Response bodies whose shape varies between
// server versions (evaluate results, historical records) are returned raw
// for the result package to normalize.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/evalsheet/internal/httputil"
	"github.com/pdiddy/evalsheet/pkg/types"
)

// ErrMissingUploadPath is returned when an upload response carries neither
// the "path" nor the legacy "file_path" key. Evaluation cannot proceed
// without a server-side path, so this is a hard failure.
var ErrMissingUploadPath = errors.New("upload response contains no file path")

// APIError is a non-2xx response from the evaluation service. Detail holds
// the server's structured error message when one was supplied.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error returns the server detail when present, else a generic message.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("evaluation service returned HTTP %d", e.StatusCode)
}

// Client talks to one evaluation service instance. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        types.ServiceConfig
	token      string
}

// New returns a Client for the service described by cfg. token is the
// session token attached to authenticated requests; empty means anonymous.
func New(cfg types.ServiceConfig, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		token:      token,
	}
}

// Upload sends one answer-sheet file as multipart form data and returns the
// server-side path for the stored file. The path is accepted under "path"
// or, for older servers, "file_path"; absence of both is an error, not a
// silent no-op.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var uploaded struct {
		Path     string `json:"path"`
		FilePath string `json:"file_path"`
	}
	if err := c.send(ctx, req, &uploaded); err != nil {
		return "", err
	}

	path := uploaded.Path
	if path == "" {
		path = uploaded.FilePath
	}
	if path == "" {
		return "", ErrMissingUploadPath
	}
	return path, nil
}

// Evaluate scores a previously uploaded file against a model answer. The
// response shape varies between server versions, so the body is returned
// raw for normalization by the caller.
func (c *Client) Evaluate(ctx context.Context, filePath string, modelAnswerID int) (json.RawMessage, error) {
	payload := struct {
		FilePath      string `json:"file_path"`
		ModelAnswerID int    `json:"model_answer_id"`
	}{FilePath: filePath, ModelAnswerID: modelAnswerID}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/eval/", payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListResults fetches all historical evaluation records. Each row is
// returned raw; shapes differ between records generated by different
// server versions.
func (c *Client) ListResults(ctx context.Context) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/results/", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteResult removes one historical record from the result store.
func (c *Client) DeleteResult(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/results/%d", id), nil, nil)
}

// newRequest builds a request against the service base URL with the shared
// headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON sends a JSON request and decodes a JSON response. A nil body sends
// no payload; a nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(ctx, req, out)
}

// send executes a prepared request, maps non-2xx responses to APIError, and
// decodes the body into out when out is non-nil.
func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	zerolog.Ctx(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("request")

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	zerolog.Ctx(ctx).Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", req.URL.Path, err)
	}
	return nil
}

// decodeError maps an error response to an APIError. The server's "detail"
// is usually a plain string; validation failures carry a list of per-field
// objects instead, from which the first message is surfaced.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		apiErr.Detail = items[0].Msg
	}
	return apiErr
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/evalsheet/pkg/types"
)

// validate checks outbound write payloads against the same constraints the
// server enforces, so obvious mistakes never reach the network.
var validate = validator.New()

// ModelAnswerDraft is the payload for creating or updating a model answer.
type ModelAnswerDraft struct {
	// QuestionTitle is the short title shown in selection lists.
	QuestionTitle string `json:"question_title" validate:"required,max=255"`

	// ModelText is the full reference answer text.
	ModelText string `json:"model_text" validate:"required"`
}

// ListModelAnswers fetches all model answers for selection.
func (c *Client) ListModelAnswers(ctx context.Context) ([]types.ModelAnswer, error) {
	var answers []types.ModelAnswer
	if err := c.doJSON(ctx, http.MethodGet, "/model-answers/", nil, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// CreateModelAnswer stores a new model answer and returns the created record.
func (c *Client) CreateModelAnswer(ctx context.Context, draft ModelAnswerDraft) (types.ModelAnswer, error) {
	if err := validate.Struct(draft); err != nil {
		return types.ModelAnswer{}, fmt.Errorf("invalid model answer: %w", err)
	}
	var created types.ModelAnswer
	if err := c.doJSON(ctx, http.MethodPost, "/model-answers/", draft, &created); err != nil {
		return types.ModelAnswer{}, err
	}
	return created, nil
}

// UpdateModelAnswer replaces the title and text of an existing model answer.
func (c *Client) UpdateModelAnswer(ctx context.Context, id int, draft ModelAnswerDraft) error {
	if err := validate.Struct(draft); err != nil {
		return fmt.Errorf("invalid model answer: %w", err)
	}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/model-answers/%d", id), draft, nil)
}

// DeleteModelAnswer removes a model answer from the service.
func (c *Client) DeleteModelAnswer(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/model-answers/%d", id), nil, nil)
}

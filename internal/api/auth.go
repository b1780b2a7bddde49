// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"net/http"
)

// Credentials is a username/password pair for the auth endpoints. The
// length constraints mirror the server's registration rules.
type Credentials struct {
	// Username is the account name.
	Username string `json:"username" validate:"required,min=3,max=50"`

	// Password is the account password.
	Password string `json:"password" validate:"required,min=4,max=128"`
}

// Register creates a new account on the service.
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/register", creds, nil)
}

// Login authenticates and returns the session token to attach to later
// requests. Servers that manage the session entirely through cookies return
// no token; the empty string is not an error.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := validate.Struct(creds); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", err)
	}

	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, &body); err != nil {
		return "", err
	}
	if body.Token != "" {
		return body.Token, nil
	}
	return body.AccessToken, nil
}

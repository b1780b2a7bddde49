// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists the login token between CLI invocations as a
// plain-text file in the config directory.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const tokenFile = "session"

// Save writes the session token to dir, creating the directory if needed.
// The file is readable only by the owner.
func Save(dir, token string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	path := filepath.Join(dir, tokenFile)
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load returns the stored session token, trimmed. A missing file is not an
// error; Load returns the empty string (anonymous session).
func Load(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the stored session token. A missing file is not an error.
func Clear(dir string) error {
	err := os.Remove(filepath.Join(dir, tokenFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

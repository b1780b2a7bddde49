// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for requests to the evaluation service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evalsheet/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ServiceConfig holds the connection settings for the remote evaluation
// service.
type ServiceConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the root URL of the evaluation service
	// (e.g. "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxRetries is the number of retry attempts on rate-limited requests
	// (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// JournalConfig holds settings for the local submission journal.
type JournalConfig struct {
	// Dir is the directory holding the journal database (default
	// "~/.config/evalsheet").
	Dir string `json:"dir" yaml:"dir"`

	// MaxEntries is the default maximum number of entries listed by the
	// history command (default 50).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`
}

// ClientConfig groups all configuration for the evalsheet client.
type ClientConfig struct {
	Service ServiceConfig `json:"service" yaml:"service"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

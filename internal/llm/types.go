// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package llm sends single-shot chat completion requests to Yandex Cloud
// Foundation Models or to an OpenAI-compatible server.
package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/rasaedge/internal/config"
)

// Message roles understood by both providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 600
)

var (
	// ErrEmptyCompletion is returned when a 2xx response carries no answer text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrInvalidRequest classifies requests rejected before any network call.
	ErrInvalidRequest = errors.New("invalid completion request")
	// ErrUnsupportedProvider is returned by NewClient for unknown providers.
	ErrUnsupportedProvider = config.ErrUnknownProvider
)

// Message is one chat turn.
type Message struct {
	Role string
	Text string
}

// Request is a provider-agnostic completion request.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	InputTokens      int
	CompletionTokens int
	TotalTokens      int
}

// Response is the extracted answer.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

func (r Request) validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidRequest)
	}
	hasUser := false
	for i, m := range r.Messages {
		switch m.Role {
		case RoleSystem, RoleAssistant:
		case RoleUser:
			hasUser = true
		default:
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidRequest, i, m.Role)
		}
		if strings.TrimSpace(m.Text) == "" {
			return fmt.Errorf("%w: message %d (%s) is empty", ErrInvalidRequest, i, m.Role)
		}
	}
	if !hasUser {
		return fmt.Errorf("%w: at least one user message is required", ErrInvalidRequest)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f out of range [0, 2]", ErrInvalidRequest, r.Temperature)
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("%w: max tokens %d is negative", ErrInvalidRequest, r.MaxTokens)
	}
	return nil
}

func (r Request) withDefaults() Request {
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	return r
}

// StatusError is a non-2xx answer from a completion API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string // truncated
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: http %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Body)
}

const maxErrorBody = 512

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

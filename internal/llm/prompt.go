// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package llm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultSystemPrompt = "Ты ассистент по Rasa. Отвечай кратко по-русски."
	defaultUserPrompt   = "Как подключить Telegram к Rasa?"
)

// Prompt is a system/user message pair plus sampling options.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// promptFile is the on-disk shape; pointers tell "absent" from zero.
type promptFile struct {
	System      *string  `yaml:"system"`
	User        string   `yaml:"user"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"maxTokens"`
}

// DefaultPrompt is the built-in Rasa/Telegram question.
func DefaultPrompt() Prompt {
	return Prompt{
		System:      defaultSystemPrompt,
		User:        defaultUserPrompt,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// LoadPrompt reads a YAML prompt file. Unknown keys are rejected; omitted
// keys other than user fall back to DefaultPrompt.
func LoadPrompt(path string) (Prompt, error) {
	// #nosec G304 -- operator supplied path
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompt{}, fmt.Errorf("read prompt file: %w", err)
	}
	return parsePrompt(data)
}

func parsePrompt(data []byte) (Prompt, error) {
	var raw promptFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Prompt{}, fmt.Errorf("%w: prompt file is empty", ErrInvalidRequest)
		}
		return Prompt{}, fmt.Errorf("parse prompt file: %w", err)
	}

	p := DefaultPrompt()
	if raw.System != nil {
		p.System = strings.TrimSpace(*raw.System)
	}
	p.User = strings.TrimSpace(raw.User)
	if p.User == "" {
		return Prompt{}, fmt.Errorf("%w: prompt file has no user message", ErrInvalidRequest)
	}
	if raw.Temperature != nil {
		p.Temperature = *raw.Temperature
	}
	if raw.MaxTokens != 0 {
		p.MaxTokens = raw.MaxTokens
	}
	return p, nil
}

// Request turns the prompt into a completion request. An empty system text
// sends the user message alone.
func (p Prompt) Request() Request {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Text: p.System})
	}
	msgs = append(msgs, Message{Role: RoleUser, Text: p.User})
	return Request{Messages: msgs, Temperature: p.Temperature, MaxTokens: p.MaxTokens}
}

// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ManuGH/rasaedge/internal/config"
)

// maxResponseBody caps how much of a completion response is read.
const maxResponseBody = 4 << 20

type yandexClient struct {
	http     *http.Client
	endpoint string
	apiKey   string
	folderID string
	modelURI string
}

func newYandexClient(cfg config.YandexLLM, hc *http.Client) *yandexClient {
	return &yandexClient{
		http:     hc,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		folderID: cfg.FolderID,
		modelURI: cfg.ModelURI,
	}
}

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

type yandexRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
			Status  string        `json:"status"`
		} `json:"alternatives"`
		Usage struct {
			InputTextTokens  tokenCount `json:"inputTextTokens"`
			CompletionTokens tokenCount `json:"completionTokens"`
			TotalTokens      tokenCount `json:"totalTokens"`
		} `json:"usage"`
		ModelVersion string `json:"modelVersion"`
	} `json:"result"`
}

// tokenCount accepts both 27 and "27"; the API encodes int64 as strings.
type tokenCount int

func (t *tokenCount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("token count %s: %w", b, err)
	}
	*t = tokenCount(n)
	return nil
}

func (c *yandexClient) name() string  { return config.ProviderYandex }
func (c *yandexClient) model() string { return c.modelURI }

func (c *yandexClient) complete(ctx context.Context, req Request) (Response, error) {
	body := yandexRequest{
		ModelURI: c.modelURI,
		CompletionOptions: yandexCompletionOptions{
			Stream:      false,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		},
		Messages: make([]yandexMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, yandexMessage{Role: m.Role, Text: m.Text})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode yandex request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build yandex request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Api-Key "+c.apiKey)
	httpReq.Header.Set("x-folder-id", c.folderID)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("yandex request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Response{}, fmt.Errorf("read yandex response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &StatusError{Provider: c.name(), StatusCode: resp.StatusCode, Body: truncate(raw)}
	}

	var decoded yandexResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode yandex response: %w", err)
	}
	alts := decoded.Result.Alternatives
	if len(alts) == 0 || strings.TrimSpace(alts[0].Message.Text) == "" {
		return Response{}, fmt.Errorf("%w: %s", ErrEmptyCompletion, truncate(raw))
	}

	u := decoded.Result.Usage
	model := c.modelURI
	if decoded.Result.ModelVersion != "" {
		model = c.modelURI + "@" + decoded.Result.ModelVersion
	}
	return Response{
		Text:  alts[0].Message.Text,
		Model: model,
		Usage: Usage{
			InputTokens:      int(u.InputTextTokens),
			CompletionTokens: int(u.CompletionTokens),
			TotalTokens:      int(u.TotalTokens),
		},
	}, nil
}

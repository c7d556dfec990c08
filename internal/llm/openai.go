// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ManuGH/rasaedge/internal/config"
)

type openaiClient struct {
	client    openai.Client
	modelName string
}

// newOpenAIClient talks to any server exposing /chat/completions. The SDK's
// own retries are disabled so Client applies one retry policy to every provider.
func newOpenAIClient(cfg config.OpenAILLM, hc *http.Client) *openaiClient {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &openaiClient{
		client:    openai.NewClient(opts...),
		modelName: cfg.Model,
	}
}

func (c *openaiClient) name() string  { return config.ProviderOpenAI }
func (c *openaiClient) model() string { return c.modelName }

func (c *openaiClient) complete(ctx context.Context, req Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.modelName,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, &StatusError{
				Provider:   c.name(),
				StatusCode: apiErr.StatusCode,
				Body:       truncate([]byte(apiErr.Message)),
			}
		}
		return Response{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Response{}, fmt.Errorf("%w: %s", ErrEmptyCompletion, truncate([]byte(resp.RawJSON())))
	}

	model := resp.Model
	if model == "" {
		model = c.modelName
	}
	return Response{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		Usage: Usage{
			InputTokens:      int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func convertMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Text))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Text))
		default:
			out = append(out, openai.UserMessage(m.Text))
		}
	}
	return out
}

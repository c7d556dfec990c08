// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/rasaedge/internal/config"
	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/ManuGH/rasaedge/internal/metrics"
	"github.com/ManuGH/rasaedge/internal/platform/httpx"
	platformnet "github.com/ManuGH/rasaedge/internal/platform/net"
	"github.com/ManuGH/rasaedge/internal/telemetry"
)

// Client completes chat requests against one provider.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Provider() string
	Model() string
}

type provider interface {
	name() string
	model() string
	complete(ctx context.Context, req Request) (Response, error)
}

type options struct {
	httpClient *http.Client
	backOff    func() backoff.BackOff
}

// Option customises NewClient.
type Option func(*options)

// WithHTTPClient replaces the default traced client built from cfg.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithBackOff replaces the exponential retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(o *options) { o.backOff = newBackOff }
}

type client struct {
	p       provider
	retries int
	backOff func() backoff.BackOff
}

// NewClient validates cfg and returns a client for the configured provider.
func NewClient(cfg config.LLM, opts ...Option) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{backOff: newBackOff}
	for _, opt := range opts {
		opt(&o)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultLLMTimeout
	}
	if o.httpClient == nil {
		o.httpClient = httpx.NewClient(timeout, httpx.WithResponseHeaderTimeout(timeout), httpx.WithTracing())
	}

	var p provider
	switch cfg.Provider {
	case config.ProviderYandex, "":
		if cfg.Yandex.Endpoint == "" {
			cfg.Yandex.Endpoint = config.DefaultYandexCompletionURL
		}
		endpoint, err := platformnet.ValidateAPIEndpoint(cfg.Yandex.Endpoint, true)
		if err != nil {
			return nil, fmt.Errorf("YC_COMPLETION_URL: %w", err)
		}
		cfg.Yandex.Endpoint = endpoint
		p = newYandexClient(cfg.Yandex, o.httpClient)
	case config.ProviderOpenAI:
		baseURL, err := platformnet.ValidateAPIEndpoint(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey != "")
		if err != nil {
			return nil, fmt.Errorf("OPENAI_BASE_URL: %w", err)
		}
		cfg.OpenAI.BaseURL = baseURL
		p = newOpenAIClient(cfg.OpenAI, o.httpClient)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	return &client{p: p, retries: cfg.Retries, backOff: o.backOff}, nil
}

func (c *client) Provider() string { return c.p.name() }
func (c *client) Model() string    { return c.p.model() }

// Complete sends req, retrying transient failures up to the configured count.
func (c *client) Complete(ctx context.Context, req Request) (Response, error) {
	req = req.withDefaults()
	if err := req.validate(); err != nil {
		return Response{}, err
	}

	ctx, span := telemetry.Tracer("llm").Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.LLMAttributes(c.p.name(), c.p.model(), req.MaxTokens)...))
	defer span.End()

	logger := log.WithComponentFromContext(ctx, "llm")
	attempts := 0
	resp, err := withRetry(ctx, c.retries, c.backOff(), func(attempt int) (Response, error) {
		attempts = attempt
		start := time.Now()
		r, err := c.p.complete(ctx, req)
		metrics.ObserveLLMRequest(c.p.name(), outcome(err), time.Since(start))
		return r, err
	}, func(attempt int, err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Int(log.FieldAttempt, attempt).
			Dur("retry_in", wait).
			Msg("completion attempt failed, retrying")
	})
	span.SetAttributes(attribute.Int(telemetry.LLMAttemptsKey, attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(telemetry.ErrorAttributes(err, outcome(err))...)
		return Response{}, err
	}

	logger.Debug().
		Str(log.FieldProvider, c.p.name()).
		Str(log.FieldModel, resp.Model).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Int(log.FieldAttempt, attempts).
		Msg("completion received")
	return resp, nil
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	case errors.As(err, &se):
		return fmt.Sprintf("http_%dxx", se.StatusCode/100)
	default:
		return "error"
	}
}

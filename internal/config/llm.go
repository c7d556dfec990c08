// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported completion providers.
const (
	ProviderYandex = "yandex"
	ProviderOpenAI = "openai"
)

const (
	DefaultYandexCompletionURL = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	DefaultLLMTimeout          = 60 * time.Second
	DefaultLLMRetries          = 0
)

// ErrUnknownProvider is returned for LLM_PROVIDER values other than yandex/openai.
var ErrUnknownProvider = errors.New("unknown llm provider")

// YandexLLM holds Yandex Cloud Foundation Models credentials.
type YandexLLM struct {
	APIKey   string
	FolderID string
	ModelURI string
	Endpoint string
}

// OpenAILLM holds settings for an OpenAI-compatible /chat/completions server.
type OpenAILLM struct {
	BaseURL string
	APIKey  string // optional for local servers
	Model   string
}

// LLM is the provider-agnostic completion client configuration.
type LLM struct {
	Provider string
	Yandex   YandexLLM
	OpenAI   OpenAILLM
	Timeout  time.Duration
	Retries  int

	// MetricsTextfile is an optional node_exporter textfile target.
	MetricsTextfile string
}

// LLMFromEnv reads the LLM configuration from the environment.
// Call LoadEnvFile first to honour a local .env file.
func LLMFromEnv() LLM {
	cfg := LLM{
		Provider: strings.ToLower(strings.TrimSpace(ParseString("LLM_PROVIDER", ProviderYandex))),
		Yandex: YandexLLM{
			APIKey:   strings.TrimSpace(ParseString("YC_API_KEY", "")),
			FolderID: strings.TrimSpace(ParseString("YC_FOLDER_ID", "")),
			ModelURI: strings.TrimSpace(ParseString("YC_MODEL_URI", "")),
			Endpoint: strings.TrimSpace(ParseString("YC_COMPLETION_URL", DefaultYandexCompletionURL)),
		},
		OpenAI: OpenAILLM{
			BaseURL: strings.TrimRight(strings.TrimSpace(ParseString("OPENAI_BASE_URL", "")), "/"),
			APIKey:  strings.TrimSpace(ParseString("OPENAI_API_KEY", "")),
			Model:   strings.TrimSpace(ParseString("OPENAI_MODEL", "")),
		},
		Timeout: ParseDuration("LLM_TIMEOUT", DefaultLLMTimeout),
		Retries: ParseInt("LLM_RETRIES", DefaultLLMRetries),

		MetricsTextfile: strings.TrimSpace(ParseString("RASAEDGE_METRICS_TEXTFILE", "")),
	}
	return cfg.normalized()
}

func (c LLM) normalized() LLM {
	if c.Provider == "" {
		c.Provider = ProviderYandex
	}
	if c.Yandex.Endpoint == "" {
		c.Yandex.Endpoint = DefaultYandexCompletionURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultLLMTimeout
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	return c
}

// Validate reports every missing variable of the selected provider at once.
func (c LLM) Validate() error {
	var missing []string
	switch c.Provider {
	case ProviderYandex, "":
		if c.Yandex.APIKey == "" {
			missing = append(missing, "YC_API_KEY")
		}
		if c.Yandex.FolderID == "" {
			missing = append(missing, "YC_FOLDER_ID")
		}
		if c.Yandex.ModelURI == "" {
			missing = append(missing, "YC_MODEL_URI")
		}
	case ProviderOpenAI:
		if c.OpenAI.BaseURL == "" {
			missing = append(missing, "OPENAI_BASE_URL")
		}
		if c.OpenAI.Model == "" {
			missing = append(missing, "OPENAI_MODEL")
		}
	default:
		return fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownProvider, c.Provider, ProviderYandex, ProviderOpenAI)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

// String renders the configuration for logs with credentials masked.
func (c LLM) String() string {
	return fmt.Sprintf("%v", MaskSecrets(c))
}

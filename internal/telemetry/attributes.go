// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the tools.
const (
	RunIDKey = "run.id"

	// Site attributes
	SiteNameKey        = "site.name"
	SiteWebchatRootKey = "site.webchat_root"
	SiteTargetURLKey   = "site.target_url"
	SiteChangedKey     = "site.changed"
	SiteBackupKey      = "site.backup_path"

	// Command attributes
	CommandKey  = "command.line"
	ExitCodeKey = "command.exit_code"

	// LLM attributes
	LLMProviderKey  = "llm.provider"
	LLMModelKey     = "llm.model"
	LLMMaxTokensKey = "llm.max_tokens"
	LLMAttemptsKey  = "llm.attempts"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// SiteAttributes describes the nginx site being applied.
func SiteAttributes(name, webchatRoot, targetURL string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SiteNameKey, name),
		attribute.String(SiteWebchatRootKey, webchatRoot),
		attribute.String(SiteTargetURLKey, targetURL),
	}
}

// SiteResultAttributes describes the outcome of an apply.
func SiteResultAttributes(changed bool, backupPath string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Bool(SiteChangedKey, changed)}
	if backupPath != "" {
		attrs = append(attrs, attribute.String(SiteBackupKey, backupPath))
	}
	return attrs
}

// CommandAttributes describes an external command invocation.
func CommandAttributes(line string, exitCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CommandKey, line),
		attribute.Int(ExitCodeKey, exitCode),
	}
}

// LLMAttributes describes a completion request.
func LLMAttributes(provider, model string, maxTokens int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LLMProviderKey, provider),
		attribute.String(LLMModelKey, model),
		attribute.Int(LLMMaxTokensKey, maxTokens),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

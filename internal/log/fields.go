// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID = "run_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldCommand   = "command"
	FieldExitCode  = "exit_code"
	FieldAttempt   = "attempt"
	FieldDuration  = "duration_ms"

	// Site fields
	FieldPath        = "path"
	FieldLinkPath    = "link_path"
	FieldBackupPath  = "backup_path"
	FieldWebchatRoot = "webchat_root"
	FieldTargetURL   = "target_url"
	FieldChanged     = "changed"

	// LLM fields
	FieldProvider = "provider"
	FieldModel    = "model"
	FieldEndpoint = "endpoint"
)

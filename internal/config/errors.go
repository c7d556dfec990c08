// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

var (
	// ErrMissingRequired classifies configuration that lacks mandatory variables.
	// Use errors.Is(err, ErrMissingRequired) instead of string matching.
	ErrMissingRequired = errors.New("missing required configuration")

	// ErrEnvFile classifies failures to read an explicitly requested env file.
	ErrEnvFile = errors.New("env file")
)

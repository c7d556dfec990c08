// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is the env file looked up in the working directory.
const DefaultEnvFile = ".env"

// LoadEnvFile merges KEY=VALUE pairs from path into the process environment.
// Variables already present in the environment win over the file.
// A missing file is only an error when required is true; it reports
// whether a file was actually loaded.
func LoadEnvFile(path string, required bool) (bool, error) {
	logger := log.WithComponent("config")
	if path == "" {
		path = DefaultEnvFile
	}

	// #nosec G304 -- CLI tool, path provided by user argument
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			logger.Debug().
				Str(log.FieldPath, path).
				Msg("env file not found, relying on environment variables")
			return false, nil
		}
		return false, fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrEnvFile, path, err)
	}

	logger.Debug().
		Str(log.FieldPath, path).
		Msg("loaded env file")
	return true, nil
}

// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strings"
	"testing"
)

// managedPrefixes are the variable families this package reads.
var managedPrefixes = []string{"RASAEDGE_", "YC_", "OPENAI_", "LLM_"}

func TestMain(m *testing.M) {
	// Start every test from a clean environment.
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		for _, prefix := range managedPrefixes {
			if strings.HasPrefix(key, prefix) {
				if err := os.Unsetenv(key); err != nil {
					panic("failed to unset env: " + err.Error())
				}
				break
			}
		}
	}

	os.Exit(m.Run())
}

// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTelemetryFromEnv_Defaults(t *testing.T) {
	assert.Equal(t, Telemetry{
		Enabled:      false,
		ExporterType: "grpc",
		Endpoint:     "localhost:4317",
		SamplingRate: 1.0,
		Environment:  "production",
	}, TelemetryFromEnv())
}

func TestTelemetryFromEnv_Overrides(t *testing.T) {
	t.Setenv("RASAEDGE_OTEL_ENABLED", "true")
	t.Setenv("RASAEDGE_OTEL_EXPORTER", "http")
	t.Setenv("RASAEDGE_OTEL_ENDPOINT", "otel-collector:4318")
	t.Setenv("RASAEDGE_OTEL_SAMPLING", "0.25")
	t.Setenv("RASAEDGE_ENV", "staging")

	assert.Equal(t, Telemetry{
		Enabled:      true,
		ExporterType: "http",
		Endpoint:     "otel-collector:4318",
		SamplingRate: 0.25,
		Environment:  "staging",
	}, TelemetryFromEnv())
}

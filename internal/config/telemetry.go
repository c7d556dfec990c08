// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// Telemetry holds OTLP tracing settings. Tracing is off unless enabled.
type Telemetry struct {
	Enabled      bool
	ExporterType string // "grpc" or "http"
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// TelemetryFromEnv reads RASAEDGE_OTEL_* variables.
func TelemetryFromEnv() Telemetry {
	return Telemetry{
		Enabled:      ParseBool("RASAEDGE_OTEL_ENABLED", false),
		ExporterType: ParseString("RASAEDGE_OTEL_EXPORTER", "grpc"),
		Endpoint:     ParseString("RASAEDGE_OTEL_ENDPOINT", "localhost:4317"),
		SamplingRate: ParseFloat("RASAEDGE_OTEL_SAMPLING", 1.0),
		Environment:  ParseString("RASAEDGE_ENV", "production"),
	}
}

// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"sort"
	"strings"

	"github.com/ManuGH/rasaedge/internal/log"
)

// EnvPrefix is the namespace of the tools' own variables.
const EnvPrefix = "RASAEDGE_"

// knownEnvKeys lists every RASAEDGE_* variable read by this package.
var knownEnvKeys = []string{
	"RASAEDGE_RASA_URL",
	"RASAEDGE_WEBHOOK_PATH",
	"RASAEDGE_SERVER_NAME",
	"RASAEDGE_LISTEN_PORT",
	"RASAEDGE_SITES_AVAILABLE",
	"RASAEDGE_SITES_ENABLED",
	"RASAEDGE_SITE_NAME",
	"RASAEDGE_NGINX_BIN",
	"RASAEDGE_SYSTEMCTL_BIN",
	"RASAEDGE_COMMAND_TIMEOUT",
	"RASAEDGE_METRICS_TEXTFILE",
	"RASAEDGE_OTEL_ENABLED",
	"RASAEDGE_OTEL_EXPORTER",
	"RASAEDGE_OTEL_ENDPOINT",
	"RASAEDGE_OTEL_SAMPLING",
	"RASAEDGE_ENV",
}

// KnownEnvKeys returns the recognised RASAEDGE_* variables, sorted.
func KnownEnvKeys() []string {
	keys := append([]string(nil), knownEnvKeys...)
	sort.Strings(keys)
	return keys
}

// WarnUnknownEnv logs RASAEDGE_* keys in environ that nothing reads
// (dead flags or typos) and returns them sorted.
func WarnUnknownEnv(environ []string) []string {
	known := make(map[string]struct{}, len(knownEnvKeys))
	for _, k := range knownEnvKeys {
		known[k] = struct{}{}
	}

	var unknown []string
	for _, pair := range environ {
		key, _, _ := strings.Cut(pair, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	logger := log.WithComponent("config")
	for _, key := range unknown {
		logger.Warn().
			Str("key", key).
			Msg("unknown RASAEDGE env key detected (dead flag or typo)")
	}
	return unknown
}

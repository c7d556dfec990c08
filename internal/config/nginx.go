// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Defaults for the nginx site provisioned in front of the Rasa webchat.
const (
	DefaultRasaRESTURL    = "http://127.0.0.1:5005/webhooks/rest/webhook"
	DefaultWebhookPath    = "/webhooks/rest/webhook"
	DefaultServerName     = "_"
	DefaultListenPort     = 80
	DefaultSitesAvailable = "/etc/nginx/sites-available"
	DefaultSitesEnabled   = "/etc/nginx/sites-enabled"
	DefaultSiteName       = "rasa_webchat"
	DefaultNginxBin       = "nginx"
	DefaultSystemctlBin   = "systemctl"
	DefaultCommandTimeout = 30 * time.Second
)

// Nginx holds the settings of setup-rasa-nginx that are not positional arguments.
type Nginx struct {
	RasaRESTURL string
	WebhookPath string
	ServerName  string
	ListenPort  int

	SitesAvailable string
	SitesEnabled   string
	SiteName       string

	NginxBin       string
	SystemctlBin   string
	CommandTimeout time.Duration

	// MetricsTextfile is an optional node_exporter textfile target.
	MetricsTextfile string
}

// NginxFromEnv builds the nginx settings from RASAEDGE_* variables and defaults.
func NginxFromEnv() Nginx {
	return Nginx{
		RasaRESTURL:     ParseString("RASAEDGE_RASA_URL", DefaultRasaRESTURL),
		WebhookPath:     ParseString("RASAEDGE_WEBHOOK_PATH", DefaultWebhookPath),
		ServerName:      ParseString("RASAEDGE_SERVER_NAME", DefaultServerName),
		ListenPort:      ParseInt("RASAEDGE_LISTEN_PORT", DefaultListenPort),
		SitesAvailable:  ParseString("RASAEDGE_SITES_AVAILABLE", DefaultSitesAvailable),
		SitesEnabled:    ParseString("RASAEDGE_SITES_ENABLED", DefaultSitesEnabled),
		SiteName:        ParseString("RASAEDGE_SITE_NAME", DefaultSiteName),
		NginxBin:        ParseString("RASAEDGE_NGINX_BIN", DefaultNginxBin),
		SystemctlBin:    ParseString("RASAEDGE_SYSTEMCTL_BIN", DefaultSystemctlBin),
		CommandTimeout:  ParseDuration("RASAEDGE_COMMAND_TIMEOUT", DefaultCommandTimeout),
		MetricsTextfile: ParseString("RASAEDGE_METRICS_TEXTFILE", ""),
	}
}

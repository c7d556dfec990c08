// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNginxFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"RASAEDGE_RASA_URL", "RASAEDGE_WEBHOOK_PATH", "RASAEDGE_SERVER_NAME", "RASAEDGE_LISTEN_PORT",
		"RASAEDGE_SITES_AVAILABLE", "RASAEDGE_SITES_ENABLED", "RASAEDGE_SITE_NAME",
		"RASAEDGE_NGINX_BIN", "RASAEDGE_SYSTEMCTL_BIN", "RASAEDGE_COMMAND_TIMEOUT", "RASAEDGE_METRICS_TEXTFILE",
	} {
		t.Setenv(key, "")
	}

	want := Nginx{
		RasaRESTURL:    DefaultRasaRESTURL,
		WebhookPath:    DefaultWebhookPath,
		ServerName:     DefaultServerName,
		ListenPort:     DefaultListenPort,
		SitesAvailable: DefaultSitesAvailable,
		SitesEnabled:   DefaultSitesEnabled,
		SiteName:       DefaultSiteName,
		NginxBin:       DefaultNginxBin,
		SystemctlBin:   DefaultSystemctlBin,
		CommandTimeout: DefaultCommandTimeout,
	}
	if diff := cmp.Diff(want, NginxFromEnv()); diff != "" {
		t.Errorf("NginxFromEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestNginxFromEnv_Overrides(t *testing.T) {
	t.Setenv("RASAEDGE_SITES_AVAILABLE", "/tmp/avail")
	t.Setenv("RASAEDGE_LISTEN_PORT", "8080")
	t.Setenv("RASAEDGE_COMMAND_TIMEOUT", "5s")
	t.Setenv("RASAEDGE_NGINX_BIN", "/usr/local/sbin/nginx")

	got := NginxFromEnv()
	if got.SitesAvailable != "/tmp/avail" {
		t.Errorf("SitesAvailable = %q", got.SitesAvailable)
	}
	if got.ListenPort != 8080 {
		t.Errorf("ListenPort = %d", got.ListenPort)
	}
	if got.CommandTimeout != 5*time.Second {
		t.Errorf("CommandTimeout = %v", got.CommandTimeout)
	}
	if got.NginxBin != "/usr/local/sbin/nginx" {
		t.Errorf("NginxBin = %q", got.NginxBin)
	}
}

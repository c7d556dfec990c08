// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package nginxsite

import (
	"bytes"
	"fmt"
	"text/template"
)

// The output must stay byte-stable for identical input: Apply compares it
// with the live file to decide whether anything changed.
var siteTemplate = template.Must(template.New("site").Parse(`# Managed by setup-rasa-nginx. Local edits are replaced on the next run.
server {
    listen {{.ListenPort}};
    listen [::]:{{.ListenPort}};
    server_name {{.ServerName}};

    root "{{.WebchatRoot}}";
    index index.html;

    location = {{.WebhookPath}} {
        proxy_pass {{.RasaRESTURL}};
        proxy_http_version 1.1;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_read_timeout 60s;
    }

    location ~* \.(?:js|css|map|png|jpe?g|gif|svg|ico|woff2?)$ {
        expires 7d;
        add_header Cache-Control "public";
        try_files $uri =404;
    }

    location / {
        try_files $uri $uri/ /index.html;
    }
}
`))

// Render validates s and returns the nginx server block for it.
func Render(s Site) ([]byte, error) {
	n, err := s.Normalize()
	if err != nil {
		return nil, err
	}
	return render(n)
}

func render(n Site) ([]byte, error) {
	var buf bytes.Buffer
	if err := siteTemplate.Execute(&buf, n); err != nil {
		return nil, fmt.Errorf("render site: %w", err)
	}
	return buf.Bytes(), nil
}

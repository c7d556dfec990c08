// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package nginxsite renders and installs the nginx site that serves the Rasa
// webchat bundle and proxies its REST webhook to the Rasa server.
package nginxsite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/rasaedge/internal/config"
	platformnet "github.com/ManuGH/rasaedge/internal/platform/net"
)

// Site is the input of the rendered configuration.
type Site struct {
	WebchatRoot string // directory of the built webchat assets
	RasaRESTURL string // proxy_pass target; empty means config.DefaultRasaRESTURL
	ServerName  string
	ListenPort  int    // 0 means config.DefaultListenPort
	WebhookPath string // public location proxied to RasaRESTURL
}

// Paths locates the site file and its sites-enabled symlink.
type Paths struct {
	SitesAvailable string
	SitesEnabled   string
	Name           string
}

// Live is the path of the managed configuration file.
func (p Paths) Live() string {
	return filepath.Join(p.SitesAvailable, p.Name)
}

// Link is the path of the sites-enabled symlink.
func (p Paths) Link() string {
	return filepath.Join(p.SitesEnabled, p.Name)
}

func (p Paths) withDefaults() Paths {
	if p.SitesAvailable == "" {
		p.SitesAvailable = config.DefaultSitesAvailable
	}
	if p.SitesEnabled == "" {
		p.SitesEnabled = config.DefaultSitesEnabled
	}
	if p.Name == "" {
		p.Name = config.DefaultSiteName
	}
	return p
}

func (p Paths) validate() error {
	if p.Name == "." || p.Name == ".." || strings.ContainsAny(p.Name, `/\`) {
		return fmt.Errorf("%w: site name %q must be a plain file name", ErrInvalidSite, p.Name)
	}
	if !filepath.IsAbs(p.SitesAvailable) || !filepath.IsAbs(p.SitesEnabled) {
		return fmt.Errorf("%w: sites directories must be absolute (%s, %s)", ErrInvalidSite, p.SitesAvailable, p.SitesEnabled)
	}
	return nil
}

func (s Site) withDefaults() Site {
	if strings.TrimSpace(s.RasaRESTURL) == "" {
		s.RasaRESTURL = config.DefaultRasaRESTURL
	}
	if strings.TrimSpace(s.ServerName) == "" {
		s.ServerName = config.DefaultServerName
	}
	if s.ListenPort == 0 {
		s.ListenPort = config.DefaultListenPort
	}
	if strings.TrimSpace(s.WebhookPath) == "" {
		s.WebhookPath = config.DefaultWebhookPath
	}
	return s
}

// forbidden in values pasted into nginx directives: they would end the
// directive, open a block, or expand a variable.
const directiveUnsafe = ";{}\"'`$\\\r\n\t"

// Normalize applies defaults and validates the site. The returned Site has
// an absolute, cleaned webchat root and a trimmed proxy target.
func (s Site) Normalize() (Site, error) {
	s = s.withDefaults()

	root := strings.TrimSpace(s.WebchatRoot)
	if root == "" {
		return Site{}, fmt.Errorf("%w: directory argument is required", ErrWebchatRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Site{}, fmt.Errorf("%w: %s: %w", ErrWebchatRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Site{}, fmt.Errorf("%w: directory %s does not exist", ErrWebchatRoot, abs)
		}
		return Site{}, fmt.Errorf("%w: %s: %w", ErrWebchatRoot, abs, err)
	}
	if !info.IsDir() {
		return Site{}, fmt.Errorf("%w: %s is not a directory", ErrWebchatRoot, abs)
	}
	if strings.ContainsAny(abs, directiveUnsafe) {
		return Site{}, fmt.Errorf("%w: %q contains characters nginx cannot take literally", ErrWebchatRoot, abs)
	}
	s.WebchatRoot = abs

	target, err := platformnet.ParseProxyTarget(s.RasaRESTURL)
	if err != nil {
		return Site{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	s.RasaRESTURL = target.String()

	if s.ListenPort < 1 || s.ListenPort > 65535 {
		return Site{}, fmt.Errorf("%w: listen port %d out of range", ErrInvalidSite, s.ListenPort)
	}
	s.ServerName = strings.Join(strings.Fields(s.ServerName), " ")
	if strings.ContainsAny(s.ServerName, directiveUnsafe) {
		return Site{}, fmt.Errorf("%w: server name %q", ErrInvalidSite, s.ServerName)
	}
	s.WebhookPath = strings.TrimSpace(s.WebhookPath)
	if !strings.HasPrefix(s.WebhookPath, "/") || strings.ContainsAny(s.WebhookPath, directiveUnsafe+" ") {
		return Site{}, fmt.Errorf("%w: webhook path %q must be an absolute URL path", ErrInvalidSite, s.WebhookPath)
	}
	return s, nil
}

// Validate reports whether the site can be rendered.
func (s Site) Validate() error {
	_, err := s.Normalize()
	return err
}

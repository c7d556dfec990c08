// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package net

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsafeURL classifies URLs rejected by ParseProxyTarget.
var ErrUnsafeURL = errors.New("unsafe url")

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// ParseDirectHTTPURL validates if a string is a safe, direct HTTP/HTTPS URL.
// It enforces:
//   - Scheme must be "http" or "https"
//   - Host must be non-empty
//   - No embedded User/Password credentials
func ParseDirectHTTPURL(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}

	// strict scheme check (case-insensitive)
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}

	// require host
	if u.Host == "" {
		return nil, false
	}

	// reject credentials
	if u.User != nil {
		return nil, false
	}

	// reject fragments
	if u.Fragment != "" {
		return nil, false
	}

	return u, true
}

// ParseProxyTarget validates a URL that is pasted verbatim into a generated
// configuration file. On top of ParseDirectHTTPURL it rejects characters that
// would terminate or nest a config directive.
func ParseProxyTarget(s string) (*url.URL, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnsafeURL)
	}
	if i := strings.IndexAny(raw, " \t\r\n;{}\"'`$\\"); i != -1 {
		return nil, fmt.Errorf("%w: %q contains forbidden character %q", ErrUnsafeURL, raw, raw[i])
	}
	u, ok := ParseDirectHTTPURL(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an http(s) URL with a host and without credentials or fragment", ErrUnsafeURL, raw)
	}
	return u, nil
}

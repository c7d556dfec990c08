// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package nginxsite

import "errors"

var (
	// ErrNotRoot is returned when Apply runs without root privileges.
	ErrNotRoot = errors.New("must be run as root")
	// ErrWebchatRoot classifies a missing or unusable webchat directory.
	ErrWebchatRoot = errors.New("invalid webchat root")
	// ErrInvalidURL classifies an unusable Rasa REST webhook URL.
	ErrInvalidURL = errors.New("invalid rasa rest url")
	// ErrInvalidSite classifies other invalid site settings (port, names, paths).
	ErrInvalidSite = errors.New("invalid site settings")
	// ErrLinkConflict is returned when a regular file occupies the sites-enabled entry.
	ErrLinkConflict = errors.New("sites-enabled entry is not a symlink")
	// ErrValidation is returned when `nginx -t` rejects the configuration.
	ErrValidation = errors.New("nginx configuration test failed")
	// ErrReload is returned when nginx could not be reloaded.
	ErrReload = errors.New("nginx reload failed")
)

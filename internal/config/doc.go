// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config reads the settings of the rasaedge tools from the
// environment (optionally seeded from a .env file) and holds their defaults.
//
// Precedence is flags > environment > defaults; flags are applied by the
// commands on top of the structs returned here.
package config

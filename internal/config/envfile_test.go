// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile_LoadsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RASAEDGE_TEST_FROM_FILE=file\n# comment\nRASAEDGE_TEST_QUOTED=\"a b\"\n"), 0o600))

	t.Setenv("RASAEDGE_TEST_FROM_FILE", "")
	t.Setenv("RASAEDGE_TEST_QUOTED", "")
	os.Unsetenv("RASAEDGE_TEST_FROM_FILE")
	os.Unsetenv("RASAEDGE_TEST_QUOTED")

	loaded, err := LoadEnvFile(path, true)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "file", os.Getenv("RASAEDGE_TEST_FROM_FILE"))
	assert.Equal(t, "a b", os.Getenv("RASAEDGE_TEST_QUOTED"))
}

func TestLoadEnvFile_ExistingEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("RASAEDGE_TEST_PRECEDENCE=file\n"), 0o600))

	t.Setenv("RASAEDGE_TEST_PRECEDENCE", "process")

	_, err := LoadEnvFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, "process", os.Getenv("RASAEDGE_TEST_PRECEDENCE"))
}

func TestLoadEnvFile_MissingOptional(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"), false)
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestLoadEnvFile_MissingRequired(t *testing.T) {
	_, err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnvFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

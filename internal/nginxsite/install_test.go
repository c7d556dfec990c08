// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package nginxsite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/rasaedge/internal/config"
	"github.com/ManuGH/rasaedge/internal/procgroup"
)

type fakeRunner struct {
	calls []string
	fail  map[string]procgroup.Result
}

func (f *fakeRunner) Run(_ context.Context, c procgroup.Command) (procgroup.Result, error) {
	line := c.String()
	f.calls = append(f.calls, line)
	if res, ok := f.fail[line]; ok {
		return res, fmt.Errorf("%w: %s (exit %d)", procgroup.ErrNonZeroExit, line, res.ExitCode)
	}
	return procgroup.Result{}, nil
}

type fixture struct {
	inst   *Installer
	runner *fakeRunner
	root   string
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "webchat")
	require.NoError(t, os.Mkdir(root, 0o755))

	f := &fixture{
		runner: &fakeRunner{fail: map[string]procgroup.Result{}},
		root:   root,
		clock:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	f.inst = &Installer{
		Paths: Paths{
			SitesAvailable: filepath.Join(base, "sites-available"),
			SitesEnabled:   filepath.Join(base, "sites-enabled"),
			Name:           "rasa_webchat",
		},
		NginxBin:     "nginx",
		SystemctlBin: "systemctl",
		Runner:       f.runner,
		Geteuid:      func() int { return 0 },
		Now:          func() time.Time { return f.clock },
	}
	return f
}

func backups(t *testing.T, live string) []string {
	t.Helper()
	matches, err := filepath.Glob(live + ".bak.*")
	require.NoError(t, err)
	return matches
}

func TestApply_FreshInstall(t *testing.T) {
	f := newFixture(t)

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.True(t, res.Linked)
	assert.True(t, res.Validated)
	assert.True(t, res.Reloaded)
	assert.Empty(t, res.BackupPath)

	live := f.inst.Paths.Live()
	data, err := os.ReadFile(live)
	require.NoError(t, err)
	assert.Contains(t, string(data), "proxy_pass http://127.0.0.1:5005/webhooks/rest/webhook;")

	info, err := os.Stat(live)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	target, err := os.Readlink(f.inst.Paths.Link())
	require.NoError(t, err)
	assert.Equal(t, live, target)

	assert.Equal(t, []string{"nginx -t", "systemctl reload nginx"}, f.runner.calls)
	assert.Empty(t, backups(t, live))
}

func TestApply_Idempotent(t *testing.T) {
	f := newFixture(t)
	site := Site{WebchatRoot: f.root}

	_, err := f.inst.Apply(context.Background(), site)
	require.NoError(t, err)
	live := f.inst.Paths.Live()
	before, err := os.ReadFile(live)
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	res, err := f.inst.Apply(context.Background(), site)
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.False(t, res.Linked)
	assert.Empty(t, res.BackupPath)
	assert.True(t, res.Reloaded)

	after, err := os.ReadFile(live)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, backups(t, live))
}

func TestApply_BacksUpDifferingConfig(t *testing.T) {
	f := newFixture(t)
	live := f.inst.Paths.Live()
	require.NoError(t, os.MkdirAll(filepath.Dir(live), 0o755))
	old := []byte("server { listen 80; }\n")
	require.NoError(t, os.WriteFile(live, old, 0o644))

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, live+".bak.20260314-092653", res.BackupPath)
	assert.Equal(t, []string{res.BackupPath}, backups(t, live))

	saved, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, old, saved)

	current, err := os.ReadFile(live)
	require.NoError(t, err)
	assert.NotEqual(t, old, current)
}

func TestApply_BackupNameCollision(t *testing.T) {
	f := newFixture(t)
	live := f.inst.Paths.Live()
	require.NoError(t, os.MkdirAll(filepath.Dir(live), 0o755))
	require.NoError(t, os.WriteFile(live, []byte("old\n"), 0o644))
	taken := live + ".bak.20260314-092653"
	require.NoError(t, os.WriteFile(taken, []byte("older\n"), 0o644))

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.NoError(t, err)
	assert.Equal(t, taken+"-1", res.BackupPath)

	older, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "older\n", string(older))
}

func TestApply_NotRoot(t *testing.T) {
	f := newFixture(t)
	f.inst.Geteuid = func() int { return 1000 }

	_, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.ErrorIs(t, err, ErrNotRoot)
	assert.Contains(t, err.Error(), "must be run as root")

	_, statErr := os.Stat(f.inst.Paths.Live())
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.runner.calls)
}

func TestApply_InvalidSiteWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root, RasaRESTURL: "not a url"})
	require.ErrorIs(t, err, ErrInvalidURL)

	_, statErr := os.Stat(f.inst.Paths.Live())
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.runner.calls)
}

func TestApply_ConfigTestFailureSkipsReload(t *testing.T) {
	f := newFixture(t)
	live := f.inst.Paths.Live()
	require.NoError(t, os.MkdirAll(filepath.Dir(live), 0o755))
	require.NoError(t, os.WriteFile(live, []byte("old\n"), 0o644))
	f.runner.fail["nginx -t"] = procgroup.Result{
		ExitCode: 1,
		Stderr:   []byte(`nginx: [emerg] unknown directive "bogus"`),
	}

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "unknown directive")

	assert.Equal(t, []string{"nginx -t"}, f.runner.calls)
	assert.False(t, res.Validated)
	assert.False(t, res.Reloaded)
	assert.NotEmpty(t, res.BackupPath)
	assert.FileExists(t, res.BackupPath)
}

func TestApply_ReloadFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.fail["systemctl reload nginx"] = procgroup.Result{ExitCode: 5}

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.ErrorIs(t, err, ErrReload)
	assert.True(t, res.Validated)
	assert.False(t, res.Reloaded)
}

func TestApply_RepointsStaleSymlink(t *testing.T) {
	f := newFixture(t)
	link := f.inst.Paths.Link()
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink("/etc/nginx/sites-available/default", link))

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.NoError(t, err)
	assert.True(t, res.Linked)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, f.inst.Paths.Live(), target)
}

func TestApply_RefusesRegularFileAtLink(t *testing.T) {
	f := newFixture(t)
	link := f.inst.Paths.Link()
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.WriteFile(link, []byte("hand written\n"), 0o644))

	_, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.ErrorIs(t, err, ErrLinkConflict)

	data, err := os.ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, "hand written\n", string(data))
	assert.Empty(t, f.runner.calls)
}

func TestPlan(t *testing.T) {
	f := newFixture(t)
	f.inst.Geteuid = func() int { return 1000 }
	site := Site{WebchatRoot: f.root}

	plan, err := f.inst.Plan(site)
	require.NoError(t, err)
	assert.False(t, plan.Exists)
	assert.True(t, plan.Changed)
	assert.Equal(t, f.inst.Paths.Live(), plan.ConfigPath)

	live := f.inst.Paths.Live()
	require.NoError(t, os.MkdirAll(filepath.Dir(live), 0o755))
	require.NoError(t, os.WriteFile(live, plan.Rendered, 0o644))

	plan, err = f.inst.Plan(site)
	require.NoError(t, err)
	assert.True(t, plan.Exists)
	assert.False(t, plan.Changed)
	assert.Empty(t, f.runner.calls)
}

func TestNewInstaller(t *testing.T) {
	cfg := config.Nginx{
		SitesAvailable: "/a",
		SitesEnabled:   "/e",
		SiteName:       "chat",
		NginxBin:       "/usr/sbin/nginx",
		SystemctlBin:   "/bin/systemctl",
		CommandTimeout: 5 * time.Second,
	}
	inst := NewInstaller(cfg)

	assert.Equal(t, "/a/chat", inst.Paths.Live())
	assert.Equal(t, "/e/chat", inst.Paths.Link())
	assert.Equal(t, "/usr/sbin/nginx", inst.NginxBin)
	assert.Equal(t, ProcessRunner{Timeout: 5 * time.Second}, inst.Runner)
}

func TestApply_ProcessRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires POSIX true/false")
	}
	f := newFixture(t)
	f.inst.Runner = ProcessRunner{Timeout: 10 * time.Second}
	f.inst.NginxBin = "true"
	f.inst.SystemctlBin = "false"

	res, err := f.inst.Apply(context.Background(), Site{WebchatRoot: f.root})
	require.ErrorIs(t, err, ErrReload)
	require.ErrorIs(t, err, procgroup.ErrNonZeroExit)
	assert.True(t, res.Validated)
}

func TestErrorKind(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"not root":   {fmt.Errorf("x: %w", ErrNotRoot), "not_root"},
		"bad url":    {ErrInvalidURL, "invalid_input"},
		"conflict":   {ErrLinkConflict, "link_conflict"},
		"nginx -t":   {fmt.Errorf("%w: boom", ErrValidation), "nginx_test"},
		"reload":     {ErrReload, "reload"},
		"filesystem": {errors.New("disk full"), "io"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorKind(tc.err))
		})
	}
}

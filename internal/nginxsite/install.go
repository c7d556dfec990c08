// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package nginxsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/rasaedge/internal/config"
	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/ManuGH/rasaedge/internal/metrics"
	"github.com/ManuGH/rasaedge/internal/procgroup"
	"github.com/ManuGH/rasaedge/internal/telemetry"
)

const (
	configPerm     = 0o644
	dirPerm        = 0o755
	backupTimeForm = "20060102-150405"
)

// Runner executes external commands. procgroup-backed in production, faked in tests.
type Runner interface {
	Run(ctx context.Context, c procgroup.Command) (procgroup.Result, error)
}

// ProcessRunner runs commands in their own process group with a per-command timeout.
type ProcessRunner struct {
	Timeout time.Duration
	Grace   time.Duration
}

// Run implements Runner.
func (r ProcessRunner) Run(ctx context.Context, c procgroup.Command) (procgroup.Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return procgroup.Run(ctx, c, r.Grace)
}

// Result describes what Apply did.
type Result struct {
	ConfigPath string
	LinkPath   string
	Changed    bool   // live file content was written
	Linked     bool   // symlink was created or repointed
	BackupPath string // empty when no prior content was replaced
	Validated  bool
	Reloaded   bool
}

// Plan is the outcome of a dry run.
type Plan struct {
	ConfigPath string
	Rendered   []byte
	Exists     bool
	Changed    bool
}

// Installer writes, enables and activates the site.
type Installer struct {
	Paths        Paths
	NginxBin     string
	SystemctlBin string
	Runner       Runner

	// Geteuid and Now are replaceable in tests.
	Geteuid func() int
	Now     func() time.Time
}

// NewInstaller builds an Installer from the nginx settings.
func NewInstaller(cfg config.Nginx) *Installer {
	return &Installer{
		Paths: Paths{
			SitesAvailable: cfg.SitesAvailable,
			SitesEnabled:   cfg.SitesEnabled,
			Name:           cfg.SiteName,
		},
		NginxBin:     cfg.NginxBin,
		SystemctlBin: cfg.SystemctlBin,
		Runner:       ProcessRunner{Timeout: cfg.CommandTimeout},
		Geteuid:      os.Geteuid,
		Now:          time.Now,
	}
}

func (i *Installer) paths() Paths {
	return i.Paths.withDefaults()
}

func (i *Installer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Installer) euid() int {
	if i.Geteuid != nil {
		return i.Geteuid()
	}
	return os.Geteuid()
}

func (i *Installer) runner() Runner {
	if i.Runner != nil {
		return i.Runner
	}
	return ProcessRunner{Timeout: config.DefaultCommandTimeout}
}

// Plan renders the site and compares it with the live file. It needs no
// privileges and touches nothing.
func (i *Installer) Plan(s Site) (Plan, error) {
	p := i.paths()
	if err := p.validate(); err != nil {
		return Plan{}, err
	}
	rendered, err := Render(s)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{ConfigPath: p.Live(), Rendered: rendered, Changed: true}
	current, err := os.ReadFile(p.Live())
	switch {
	case err == nil:
		plan.Exists = true
		plan.Changed = !bytes.Equal(current, rendered)
	case !errors.Is(err, fs.ErrNotExist):
		return Plan{}, fmt.Errorf("read %s: %w", p.Live(), err)
	}
	return plan, nil
}

// Apply installs the site: write the config if it differs (backing up the
// previous content), link it into sites-enabled, test it with nginx -t and
// reload nginx. A failed test leaves the new file and the backup in place
// and skips the reload.
func (i *Installer) Apply(ctx context.Context, s Site) (res Result, err error) {
	p := i.paths()
	res = Result{ConfigPath: p.Live(), LinkPath: p.Link()}

	ctx, span := telemetry.Tracer("nginxsite").Start(ctx, "nginxsite.apply",
		trace.WithAttributes(telemetry.SiteAttributes(p.Name, s.WebchatRoot, s.RasaRESTURL)...))
	defer span.End()

	logger := log.WithComponentFromContext(ctx, "nginxsite")
	defer func() {
		outcome := metrics.ApplyUnchanged
		if res.Changed {
			outcome = metrics.ApplyWritten
		}
		if err != nil {
			outcome = metrics.ApplyFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(telemetry.ErrorAttributes(err, errorKind(err))...)
		}
		metrics.RecordSiteApply(outcome, res.BackupPath != "", i.now())
		span.SetAttributes(telemetry.SiteResultAttributes(res.Changed, res.BackupPath)...)
	}()

	if uid := i.euid(); uid != 0 {
		return res, fmt.Errorf("%w (effective uid %d)", ErrNotRoot, uid)
	}
	if err := p.validate(); err != nil {
		return res, err
	}

	n, err := s.Normalize()
	if err != nil {
		return res, err
	}
	rendered, err := render(n)
	if err != nil {
		return res, err
	}

	changed, backup, err := i.writeConfig(p.Live(), rendered)
	res.Changed, res.BackupPath = changed, backup
	if err != nil {
		return res, err
	}
	logger.Info().
		Str(log.FieldPath, p.Live()).
		Str(log.FieldWebchatRoot, n.WebchatRoot).
		Str(log.FieldTargetURL, n.RasaRESTURL).
		Bool(log.FieldChanged, changed).
		Str(log.FieldBackupPath, backup).
		Msg("site config in place")

	linked, err := i.ensureLink(p.Live(), p.Link())
	res.Linked = linked
	if err != nil {
		return res, err
	}
	if linked {
		logger.Info().Str(log.FieldLinkPath, p.Link()).Str(log.FieldPath, p.Live()).Msg("site enabled")
	}

	if err := i.run(ctx, ErrValidation, nonEmpty(i.NginxBin, config.DefaultNginxBin), "-t"); err != nil {
		return res, err
	}
	res.Validated = true

	if err := i.run(ctx, ErrReload, nonEmpty(i.SystemctlBin, config.DefaultSystemctlBin), "reload", "nginx"); err != nil {
		return res, err
	}
	res.Reloaded = true
	logger.Info().Str(log.FieldEvent, "nginx.reloaded").Msg("nginx reloaded")
	return res, nil
}

// writeConfig replaces live with rendered unless the bytes already match.
// Differing prior content is copied to a timestamped backup first.
func (i *Installer) writeConfig(live string, rendered []byte) (changed bool, backup string, err error) {
	current, err := os.ReadFile(live)
	switch {
	case err == nil:
		if bytes.Equal(current, rendered) {
			return false, "", nil
		}
		backup, err = i.backup(live, current)
		if err != nil {
			return false, "", err
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(live), dirPerm); err != nil {
			return false, "", fmt.Errorf("create %s: %w", filepath.Dir(live), err)
		}
	default:
		return false, "", fmt.Errorf("read %s: %w", live, err)
	}

	if err := writeAtomic(live, rendered); err != nil {
		return false, backup, err
	}
	return true, backup, nil
}

func (i *Installer) backup(live string, content []byte) (string, error) {
	base := live + ".bak." + i.now().Format(backupTimeForm)
	name := base
	for n := 1; ; n++ {
		_, err := os.Lstat(name)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		name = base + "-" + strconv.Itoa(n)
	}
	if err := writeAtomic(name, content); err != nil {
		return "", fmt.Errorf("backup %s: %w", live, err)
	}
	return name, nil
}

func writeAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithStaticPermissions(configPerm))
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// ensureLink makes link a symlink to live. It reports whether the link was
// created or repointed.
func (i *Installer) ensureLink(live, link string) (bool, error) {
	info, err := os.Lstat(link)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", link, err)
	case info.Mode()&fs.ModeSymlink == 0:
		return false, fmt.Errorf("%w: %s", ErrLinkConflict, link)
	default:
		target, err := os.Readlink(link)
		if err != nil {
			return false, fmt.Errorf("readlink %s: %w", link, err)
		}
		if target == live {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(link), dirPerm); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(link), err)
	}
	if err := renameio.Symlink(live, link); err != nil {
		return false, fmt.Errorf("link %s: %w", link, err)
	}
	return true, nil
}

func (i *Installer) run(ctx context.Context, class error, name string, args ...string) error {
	c := procgroup.Command{Name: name, Args: args}
	ctx, span := telemetry.Tracer("nginxsite").Start(ctx, "nginxsite.command")
	defer span.End()

	out, err := i.runner().Run(ctx, c)
	span.SetAttributes(telemetry.CommandAttributes(c.String(), out.ExitCode)...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if msg := out.Output(); msg != "" {
			return fmt.Errorf("%w: %w\n%s", class, err, msg)
		}
		return fmt.Errorf("%w: %w", class, err)
	}
	return nil
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// errorKind maps an apply failure to a short label for spans.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotRoot):
		return "not_root"
	case errors.Is(err, ErrWebchatRoot), errors.Is(err, ErrInvalidURL), errors.Is(err, ErrInvalidSite):
		return "invalid_input"
	case errors.Is(err, ErrLinkConflict):
		return "link_conflict"
	case errors.Is(err, ErrValidation):
		return "nginx_test"
	case errors.Is(err, ErrReload):
		return "reload"
	default:
		return "io"
	}
}

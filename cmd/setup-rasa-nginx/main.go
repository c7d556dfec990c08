// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// setup-rasa-nginx installs the nginx site that serves a built Rasa webchat
// bundle and proxies its REST webhook to the Rasa server.
//
// Usage:
//
//	setup-rasa-nginx [flags] WEBCHAT_ROOT [RASA_REST_URL]
//
// Exit codes:
//   - 0: site installed and nginx reloaded (or dry run printed)
//   - 1: usage, validation, permission or nginx error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/rasaedge/internal/config"
	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/ManuGH/rasaedge/internal/metrics"
	"github.com/ManuGH/rasaedge/internal/nginxsite"
	"github.com/ManuGH/rasaedge/internal/telemetry"
	"github.com/ManuGH/rasaedge/internal/version"
)

const serviceName = "setup-rasa-nginx"

// geteuid is swapped in tests.
var geteuid = os.Geteuid

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func printUsage(fs *flag.FlagSet, defaultURL string) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  setup-rasa-nginx [flags] WEBCHAT_ROOT [RASA_REST_URL]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Serves WEBCHAT_ROOT through nginx and proxies the Rasa REST webhook")
	fmt.Fprintf(w, "to RASA_REST_URL (default %s).\n", defaultURL)
	fmt.Fprintln(w, "Must be run as root unless -dry-run is given.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.Configure(log.Config{Output: stderr, Service: serviceName, Version: version.Version})
	cfg := config.NginxFromEnv()
	config.WarnUnknownEnv(os.Environ())

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs, cfg.RasaRESTURL) }

	fs.StringVar(&cfg.ServerName, "server-name", cfg.ServerName, "nginx server_name")
	fs.IntVar(&cfg.ListenPort, "listen", cfg.ListenPort, "port nginx listens on")
	fs.StringVar(&cfg.WebhookPath, "webhook-path", cfg.WebhookPath, "public location proxied to the Rasa webhook")
	fs.StringVar(&cfg.SitesAvailable, "sites-available", cfg.SitesAvailable, "directory of site configs")
	fs.StringVar(&cfg.SitesEnabled, "sites-enabled", cfg.SitesEnabled, "directory of enabled site symlinks")
	fs.StringVar(&cfg.SiteName, "name", cfg.SiteName, "site file name")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write run metrics to this node_exporter textfile")
	dryRun := fs.Bool("dry-run", false, "print the rendered config and exit without changing anything")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if *logLevel != "" {
		log.Configure(log.Config{Output: stderr, Service: serviceName, Version: version.Version, Level: *logLevel})
	}

	rest := fs.Args()
	switch {
	case len(rest) == 0:
		fmt.Fprintln(stderr, "Error: WEBCHAT_ROOT is required")
		fmt.Fprintln(stderr, "")
		fs.Usage()
		return 1
	case len(rest) > 2:
		fmt.Fprintf(stderr, "Error: unexpected arguments: %v\n\n", rest[2:])
		fs.Usage()
		return 1
	}

	// Site treats a zero port as unset; an explicit 0 from a flag or the
	// environment is out of range.
	if cfg.ListenPort < 1 || cfg.ListenPort > 65535 {
		fmt.Fprintf(stderr, "Error: %v: listen port %d out of range (1-65535)\n", nginxsite.ErrInvalidSite, cfg.ListenPort)
		return 1
	}

	site := nginxsite.Site{
		WebchatRoot: rest[0],
		RasaRESTURL: cfg.RasaRESTURL,
		ServerName:  cfg.ServerName,
		ListenPort:  cfg.ListenPort,
		WebhookPath: cfg.WebhookPath,
	}
	if len(rest) == 2 {
		site.RasaRESTURL = rest[1]
	}

	inst := nginxsite.NewInstaller(cfg)
	inst.Geteuid = geteuid

	if *dryRun {
		return dryRunPlan(inst, site, stdout, stderr)
	}

	ctx = log.ContextWithRunID(ctx, log.NewRunID())
	logger := log.WithComponentFromContext(ctx, "cli")

	tp, err := telemetry.NewProvider(ctx, telemetry.FromSettings(config.TelemetryFromEnv(), serviceName, version.Version))
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	start := time.Now()
	res, err := inst.Apply(ctx, site)
	if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		logger.Warn().Err(werr).Msg("metrics textfile not written")
	}
	if err != nil {
		logger.Error().Err(err).Int64(log.FieldDuration, time.Since(start).Milliseconds()).Msg("setup failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, nginxsite.ErrValidation) && res.BackupPath != "" {
			fmt.Fprintf(stderr, "Previous config kept at %s\n", res.BackupPath)
		}
		return 1
	}

	printResult(stdout, res)
	return 0
}

func dryRunPlan(inst *nginxsite.Installer, site nginxsite.Site, stdout, stderr io.Writer) int {
	plan, err := inst.Plan(site)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(plan.Rendered)
	switch {
	case !plan.Exists:
		fmt.Fprintf(stderr, "%s does not exist yet and would be created\n", plan.ConfigPath)
	case plan.Changed:
		fmt.Fprintf(stderr, "%s differs and would be replaced (with backup)\n", plan.ConfigPath)
	default:
		fmt.Fprintf(stderr, "%s is up to date\n", plan.ConfigPath)
	}
	return 0
}

func printResult(w io.Writer, res nginxsite.Result) {
	if res.Changed {
		fmt.Fprintf(w, "Wrote %s\n", res.ConfigPath)
	} else {
		fmt.Fprintf(w, "%s unchanged\n", res.ConfigPath)
	}
	if res.BackupPath != "" {
		fmt.Fprintf(w, "Backup: %s\n", res.BackupPath)
	}
	if res.Linked {
		fmt.Fprintf(w, "Enabled %s -> %s\n", res.LinkPath, res.ConfigPath)
	}
	fmt.Fprintln(w, "nginx configuration test passed, nginx reloaded")
}

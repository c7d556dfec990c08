// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// llmask sends one prompt to a completion API and prints the answer.
//
// Usage:
//
//	llmask [flags] [QUESTION...]
//
// Without arguments it asks the built-in Rasa/Telegram question. Credentials
// come from the environment after a local .env file is loaded:
// YC_API_KEY, YC_FOLDER_ID, YC_MODEL_URI for Yandex Cloud, or
// OPENAI_BASE_URL, OPENAI_MODEL, OPENAI_API_KEY with -provider openai.
//
// Exit codes:
//   - 0: answer printed
//   - 1: usage, configuration, HTTP or empty-answer error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/rasaedge/internal/config"
	"github.com/ManuGH/rasaedge/internal/llm"
	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/ManuGH/rasaedge/internal/metrics"
	"github.com/ManuGH/rasaedge/internal/telemetry"
	"github.com/ManuGH/rasaedge/internal/version"
)

const serviceName = "llmask"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  llmask [flags] [QUESTION...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment (yandex): YC_API_KEY, YC_FOLDER_ID, YC_MODEL_URI")
	fmt.Fprintln(w, "Environment (openai): OPENAI_BASE_URL, OPENAI_MODEL, OPENAI_API_KEY")
	fmt.Fprintln(w, "Common: LLM_PROVIDER, LLM_TIMEOUT, LLM_RETRIES, RASAEDGE_METRICS_TEXTFILE")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}

type cliFlags struct {
	envFile     string
	provider    string
	promptFile  string
	system      string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	metricsFile string
	logLevel    string
	showVersion bool
	set         map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs) }

	fs.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "env file to load; existing variables win")
	fs.StringVar(&f.provider, "provider", "", "completion provider (yandex, openai); defaults to $LLM_PROVIDER or yandex")
	fs.StringVar(&f.promptFile, "prompt-file", "", "YAML prompt file with system, user, temperature, maxTokens")
	fs.StringVar(&f.system, "system", "", "system message override")
	fs.Float64Var(&f.temperature, "temperature", llm.DefaultTemperature, "sampling temperature")
	fs.IntVar(&f.maxTokens, "max-tokens", llm.DefaultMaxTokens, "maximum tokens in the answer")
	fs.DurationVar(&f.timeout, "timeout", 0, "per-request timeout; defaults to $LLM_TIMEOUT or 60s")
	fs.StringVar(&f.metricsFile, "metrics-textfile", "", "write request metrics to this node_exporter textfile; defaults to $RASAEDGE_METRICS_TEXTFILE")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, fs.Args(), nil
}

// buildPrompt layers prompt file, flags and positional question over the default.
func buildPrompt(f *cliFlags, question []string) (llm.Prompt, error) {
	p := llm.DefaultPrompt()
	if f.promptFile != "" {
		loaded, err := llm.LoadPrompt(f.promptFile)
		if err != nil {
			return llm.Prompt{}, err
		}
		p = loaded
	}
	if f.set["system"] {
		p.System = f.system
	}
	if f.set["temperature"] {
		p.Temperature = f.temperature
	}
	if f.set["max-tokens"] {
		p.MaxTokens = f.maxTokens
	}
	if q := strings.TrimSpace(strings.Join(question, " ")); q != "" {
		p.User = q
	}
	return p, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.Configure(log.Config{Output: stderr, Service: serviceName, Version: version.Version})

	f, question, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if f.showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if f.logLevel != "" {
		log.Configure(log.Config{Output: stderr, Service: serviceName, Version: version.Version, Level: f.logLevel})
	}

	if _, err := config.LoadEnvFile(f.envFile, f.set["env-file"]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	config.WarnUnknownEnv(os.Environ())
	cfg := config.LLMFromEnv()
	if f.provider != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(f.provider))
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if f.set["metrics-textfile"] {
		cfg.MetricsTextfile = f.metricsFile
	}

	prompt, err := buildPrompt(f, question)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		if errors.Is(err, config.ErrMissingRequired) {
			fmt.Fprintf(stderr, "Error: %v (set them in the environment or in %s)\n", err, f.envFile)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
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

	logger.Debug().Stringer("config", cfg).Msg("effective llm configuration")
	logger.Info().
		Str(log.FieldProvider, client.Provider()).
		Str(log.FieldModel, client.Model()).
		Msg("requesting completion")

	resp, err := client.Complete(ctx, prompt.Request())
	if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		logger.Warn().Err(werr).Msg("metrics textfile not written")
	}
	if err != nil {
		if errors.Is(err, llm.ErrEmptyCompletion) {
			fmt.Fprintf(stderr, "Error: the model returned an empty or malformed answer: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, resp.Text)
	return 0
}

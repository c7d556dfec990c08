// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for rasaedge runs.
//
// The tools are short-lived, so nothing is scraped. Instead the registry is
// dumped to a node_exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every rasaedge collector. It is private to the process
// so textfile dumps only contain rasaedge series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// ProcTerminateTotal counts signals sent to process groups, by signal and result.
	ProcTerminateTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rasaedge_proc_terminate_total",
		Help: "Signals sent to terminate external process groups, by signal and result.",
	}, []string{"signal", "result"})

	// ProcWaitTotal counts how terminated process groups finished.
	ProcWaitTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rasaedge_proc_wait_total",
		Help: "Wait outcomes of terminated external processes.",
	}, []string{"outcome"})

	// CommandDuration tracks external command runtimes, by binary and outcome.
	CommandDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rasaedge_command_duration_seconds",
		Help:    "Runtime of external commands (nginx, systemctl), by binary and outcome.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"command", "outcome"})

	// SiteApplyTotal counts site installs by result (unchanged, written, failed).
	SiteApplyTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rasaedge_site_apply_total",
		Help: "nginx site apply runs, by result.",
	}, []string{"result"})

	// SiteBackupsTotal counts backups of replaced site configs.
	SiteBackupsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "rasaedge_site_backups_total",
		Help: "Backups written before replacing a differing nginx site config.",
	})

	// SiteLastApplySuccess is 1 if the last apply succeeded, 0 otherwise.
	SiteLastApplySuccess = factory.NewGauge(prometheus.GaugeOpts{
		Name: "rasaedge_site_last_apply_success",
		Help: "Whether the last nginx site apply succeeded (1) or failed (0).",
	})

	// SiteLastApplyTimestamp is the unix time of the last apply.
	SiteLastApplyTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Name: "rasaedge_site_last_apply_timestamp_seconds",
		Help: "Unix timestamp of the last nginx site apply.",
	})

	// LLMRequestsTotal counts completion attempts, by provider and outcome.
	LLMRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "rasaedge_llm_requests_total",
		Help: "Completion API attempts, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// LLMRequestDuration tracks completion latency, by provider.
	LLMRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rasaedge_llm_request_duration_seconds",
		Help:    "Completion API latency, by provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider"})
)

// Site apply results.
const (
	ApplyUnchanged = "unchanged"
	ApplyWritten   = "written"
	ApplyFailed    = "failed"
)

// IncProcTerminate records a termination signal.
func IncProcTerminate(signal, result string) {
	ProcTerminateTotal.WithLabelValues(signal, result).Inc()
}

// IncProcWait records how a terminated process finished.
func IncProcWait(outcome string) {
	ProcWaitTotal.WithLabelValues(outcome).Inc()
}

// ObserveCommand records the runtime of an external command.
func ObserveCommand(command, outcome string, d time.Duration) {
	CommandDuration.WithLabelValues(command, outcome).Observe(d.Seconds())
}

// RecordSiteApply records one apply run.
func RecordSiteApply(result string, backedUp bool, at time.Time) {
	SiteApplyTotal.WithLabelValues(result).Inc()
	if backedUp {
		SiteBackupsTotal.Inc()
	}
	if result == ApplyFailed {
		SiteLastApplySuccess.Set(0)
	} else {
		SiteLastApplySuccess.Set(1)
	}
	SiteLastApplyTimestamp.Set(float64(at.Unix()))
}

// ObserveLLMRequest records one completion attempt.
func ObserveLLMRequest(provider, outcome string, d time.Duration) {
	LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
	LLMRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// WriteTextfile dumps the registry in Prometheus text format to path.
// The write is atomic so node_exporter never reads a partial file.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSiteApply(t *testing.T) {
	beforeWritten := testutil.ToFloat64(SiteApplyTotal.WithLabelValues(ApplyWritten))
	beforeBackups := testutil.ToFloat64(SiteBackupsTotal)

	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	RecordSiteApply(ApplyWritten, true, at)

	assert.Equal(t, beforeWritten+1, testutil.ToFloat64(SiteApplyTotal.WithLabelValues(ApplyWritten)))
	assert.Equal(t, beforeBackups+1, testutil.ToFloat64(SiteBackupsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(SiteLastApplySuccess))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(SiteLastApplyTimestamp))

	RecordSiteApply(ApplyFailed, false, at)
	assert.Equal(t, 0.0, testutil.ToFloat64(SiteLastApplySuccess))
	assert.Equal(t, beforeBackups+1, testutil.ToFloat64(SiteBackupsTotal))
}

func TestProcCounters(t *testing.T) {
	before := testutil.ToFloat64(ProcTerminateTotal.WithLabelValues("SIGTERM", "sent"))
	IncProcTerminate("SIGTERM", "sent")
	assert.Equal(t, before+1, testutil.ToFloat64(ProcTerminateTotal.WithLabelValues("SIGTERM", "sent")))

	beforeWait := testutil.ToFloat64(ProcWaitTotal.WithLabelValues("exit0"))
	IncProcWait("exit0")
	assert.Equal(t, beforeWait+1, testutil.ToFloat64(ProcWaitTotal.WithLabelValues("exit0")))
}

func TestObserveLLMRequest(t *testing.T) {
	before := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("yandex", "ok"))
	ObserveLLMRequest("yandex", "ok", 1500*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("yandex", "ok")))
}

func TestWriteTextfile(t *testing.T) {
	ObserveCommand("nginx", "ok", 20*time.Millisecond)
	RecordSiteApply(ApplyUnchanged, false, time.Now())

	path := filepath.Join(t.TempDir(), "rasaedge.prom")
	require.NoError(t, WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "rasaedge_site_apply_total")
	assert.Contains(t, out, `rasaedge_command_duration_seconds_count{command="nginx",outcome="ok"}`)
	assert.NotContains(t, out, "go_goroutines", "textfile must not carry runtime collectors")
}

func TestWriteTextfile_EmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, WriteTextfile(""))
}

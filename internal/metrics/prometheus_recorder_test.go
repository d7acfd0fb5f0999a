package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("export", 150*time.Millisecond)
	pr.IncStageResult("export", ResultSuccess)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome("partial")
	pr.ObserveExportBatch(20*time.Millisecond, true)
	pr.IncExportRetry()
	pr.IncDownloadResult(true)
	pr.IncDownloadResult(true)
	pr.IncDownloadResult(false)
	pr.IncIconsSkipped("normalize")
	pr.SetBundleSize(22)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.downloads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.downloads.WithLabelValues("failed")), 0)
	assert.InDelta(t, 22, testutil.ToFloat64(pr.bundleSize), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.exportRetries), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetBundleSize(7)

	path := filepath.Join(t.TempDir(), "nested", "figicons.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "figicons_bundle_icons 7"), string(data))
}

package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, r *Registry, labels ...string) float64 {
	t.Helper()
	counter, err := r.MutationsTotal.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestRecordMutation(t *testing.T) {
	r := NewRegistry()

	r.RecordMutation("add", true)
	r.RecordMutation("add", true)
	r.RecordMutation("reparent", false)

	assert.Equal(t, 2.0, counterValue(t, r, "add", OutcomeApplied))
	assert.Equal(t, 1.0, counterValue(t, r, "reparent", OutcomeIgnored))
	assert.Equal(t, 0.0, counterValue(t, r, "reparent", OutcomeApplied))
}

func TestRecordRecompute(t *testing.T) {
	r := NewRegistry()

	r.RecordRecompute(7, 2*time.Millisecond)

	var gauge dto.Metric
	require.NoError(t, r.TreeNodes.Write(&gauge))
	assert.Equal(t, 7.0, gauge.GetGauge().GetValue())

	var hist dto.Metric
	require.NoError(t, r.RecomputeDuration.Write(&hist))
	assert.Equal(t, uint64(1), hist.GetHistogram().GetSampleCount())
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordPersistence("quick_save", "ok", 1024)
	r.RecordCommand("node", nil)
	r.RecordCommand("tree", errors.New("boom"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `powertree_persistence_operations_total{operation="quick_save",status="ok"} 1`))
	assert.True(t, strings.Contains(body, `powertree_commands_total{scope="tree",status="error"} 1`))
}

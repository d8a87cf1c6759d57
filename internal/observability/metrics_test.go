package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAPI("GET", "/x", "200", time.Millisecond)
		m.ObserveLLMRequest("gpt", "json", "ok", time.Second, 1, 2)
		m.ObserveBatch("ok", 3, 0, time.Second)
		m.ObserveEdit("vague", "ok", time.Second)
		m.IncChatMessage("proposal")
		m.IncAggregateConflict("document_save")
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsCountAndExpose(t *testing.T) {
	m := New()
	m.ObserveLLMRequest("gpt-4o", "json", "ok", 2*time.Second, 100, 40)
	m.ObserveLLMRequest("", "", "", 0, 0, 0)
	m.ObserveBatch("ok", 4, 0, time.Second)
	m.ObserveBatch("failed", 0, 5, time.Second)
	m.IncAggregateConflict("document_save")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("gpt-4o", "json", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("unknown", "unknown", "0")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("gpt-4o", "input")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.batchSections.WithLabelValues("generated")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.batchSections.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("document_save")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vorhaben_generation_batches_total")
}

func TestOtelHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, otelHeaders(" a=1, b=x=y ,broken,=z"))
	assert.Nil(t, otelHeaders(""))
}

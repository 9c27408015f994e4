package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewScoringMetrics(registry, "pickem-league")
	require.NoError(t, err)

	m.ObserveWeekComputation("computed", 20*time.Millisecond)
	m.ObserveWeekComputation("computed", 10*time.Millisecond)
	m.ObserveWeekComputation("not_scoreable", time.Millisecond)
	m.AddSkippedPicks(2)
	m.AddSkippedPicks(0)
	m.AddScoresWritten(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("computed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computations.WithLabelValues("not_scoreable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedPicks))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.scoresWrite))

	_, err = NewScoringMetrics(registry, "pickem-league")
	assert.Error(t, err, "registering twice must fail")
}

func TestMetricsHandler_ExposesRegisteredSeries(t *testing.T) {
	registry := NewRegistry()
	httpMetrics, err := NewHTTPMetrics(registry, "")
	require.NoError(t, err)
	httpMetrics.ObserveRequest("GET /healthz", http.MethodGet, http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pickem_http_requests_total{code="200",method="GET",route="GET /healthz"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}

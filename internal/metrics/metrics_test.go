package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest(http.MethodGet, "/programs", 200, 20*time.Millisecond)
	m.RecordRequest(http.MethodGet, "/programs", 200, 30*time.Millisecond)

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/programs", "200"))
	assert.Equal(t, 2.0, got)
}

func TestRecordCounters(t *testing.T) {
	m := New()
	m.RecordLogin("success")
	m.RecordLogin("invalid_credentials")
	m.RecordLogin("invalid_credentials")
	m.RecordAuthRejection("unauthenticated")
	m.RecordRateLimitHit("/auth/login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRejections.WithLabelValues("unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitHits.WithLabelValues("/auth/login")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordLogin("success")
	m.RecordAuthRejection("inactive")
	m.RecordRateLimitHit("/auth/login")
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordLogin("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `lsa_api_logins_total{outcome="success"} 1`))
}

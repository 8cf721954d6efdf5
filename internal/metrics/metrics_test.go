package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCounters(t *testing.T) {
	m := New("test")
	m.CacheHit("people")
	m.CacheHit("people")
	m.CacheMiss("people")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("people", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("people", "miss")))
}

func TestExport(t *testing.T) {
	m := New("test")
	m.Export("xlsx", OutcomeOK, 25)
	m.Export("xlsx", OutcomeError, 0)
	m.Export("csv", OutcomeRejected, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("xlsx", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("xlsx", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("csv", OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.exportRows), "only successful exports record rows")
}

func TestComputeAndSessions(t *testing.T) {
	m := New("test")
	hook := m.ComputeHook("people")
	hook(2*time.Millisecond, 40)
	hook(time.Millisecond, 12)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.filteredRows.WithLabelValues("people")))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.CacheMiss("people")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `test_page_cache_requests_total{result="miss",source="people"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestNew_Independent(t *testing.T) {
	// Two instances must not share a registry
	a, b := New(""), New("")
	a.SessionOpened()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sessions))
}

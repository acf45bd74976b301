package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	m := New()
	m.RecommendationRuns.WithLabelValues(OutcomeOK).Inc()
	m.RecommendationRuns.WithLabelValues(OutcomeOK).Inc()
	m.CandidatesExcluded.Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecommendationRuns.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CandidatesExcluded))

	// Independent instances do not share state.
	other := New()
	assert.Equal(t, 0.0, testutil.ToFloat64(other.CandidatesExcluded))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RPCRequests.WithLabelValues("/tripbite.v1.GroupService/GetGroup", "ok").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tripbite_rpc_requests_total{code="ok",procedure="/tripbite.v1.GroupService/GetGroup"} 1`)
}

package ops

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrelay/trade-advisor/internal/advisor/cache"
	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

func newTestRouter(store *cache.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(&Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cache:  store,
		App:    "trade-advisor",
	})
}

func TestHealthEndpoint(t *testing.T) {
	store := cache.NewStore()
	store.Set("job-1", domain.CachedJob{Kind: domain.KindPreTradeRisk})
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "trade-advisor", body["service"])
	assert.Equal(t, 1.0, body["cached_jobs"])
}

func TestListJobs(t *testing.T) {
	store := cache.NewStore()
	store.Set("job-1", domain.CachedJob{
		Kind:        domain.KindPreTradeRisk,
		Requirement: domain.Requirement{"chain": "ethereum"},
	})
	store.Set("job-2", domain.CachedJob{
		Kind:        domain.KindMarketIntel,
		Requirement: domain.Requirement{"chain": "base"},
	})
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int              `json:"count"`
		Jobs  []map[string]any `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Jobs, 2)
}

func TestGetJob(t *testing.T) {
	store := cache.NewStore()
	store.Set("job-1", domain.CachedJob{
		Kind:        domain.KindGasOptimizer,
		Requirement: domain.Requirement{"urgency": "high"},
	})
	r := newTestRouter(store)

	t.Run("cached job", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1", nil)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "job-1", body["job_id"])
		assert.Equal(t, "gas-optimizer", body["job_kind"])
	})

	t.Run("unknown job id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/missing", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

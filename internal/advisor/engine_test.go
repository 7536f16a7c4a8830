package advisor

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/internal/advisor/evidence"
)

func newEngine(gasURL, depthURL string) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gatherer := evidence.NewGatherer(&evidence.Config{
		GasProfileURL:  gasURL,
		VenueDepthURL:  depthURL,
		RequestTimeout: 2 * time.Second,
	}, logger)
	return NewEngine(gatherer, logger)
}

func resourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/gas-profile", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true,"data":{"congestion_level":"low","base_fee_gwei":9.5,"median_priority_fee_gwei":1.2,"suggested_max_fee_gwei":20.2},"freshness_seconds":15}`)
	})
	mux.HandleFunc("/v1/venue-depth", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":true,"data":{"venues":[{"venue":"uniswap_v3","depth_usd":2400000,"fee_bps":5}]},"freshness_seconds":30}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func validPreTradeRequirement() domain.Requirement {
	return domain.Requirement{
		"client_agent_id":    "agent-7",
		"chain":              "ethereum",
		"asset_in":           "USDC",
		"asset_out":          "WETH",
		"side":               "buy",
		"notional_value_usd": 10000.0,
		"max_slippage_bps":   50.0,
	}
}

func TestEngineRun_HealthyResources(t *testing.T) {
	srv := resourceServer(t)
	e := newEngine(srv.URL+"/v1/gas-profile", srv.URL+"/v1/venue-depth")

	d := e.Run(context.Background(), domain.KindPreTradeRisk, validPreTradeRequirement())

	assert.Equal(t, true, d["validation_passed"])
	assert.Equal(t, domain.DecisionApprove, d["decision"])
	assert.Equal(t, domain.ConfidenceHigh, d["confidence_level"])

	records := d["evidence"].([]domain.Evidence)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Empty(t, r.Error)
	}
}

func TestEngineRun_DegradedResources(t *testing.T) {
	// Both resources unreachable: the request still validates, analysis
	// falls back to conservative defaults, and confidence drops to low.
	e := newEngine("http://127.0.0.1:1/v1/gas-profile", "http://127.0.0.1:1/v1/venue-depth")

	d := e.Run(context.Background(), domain.KindPreTradeRisk, validPreTradeRequirement())

	assert.Equal(t, true, d["validation_passed"])
	assert.Equal(t, domain.DecisionApprove, d["decision"])
	assert.Equal(t, domain.ConfidenceLow, d["confidence_level"])
	assert.Equal(t, 16, d["estimated_slippage_bps"])

	records := d["evidence"].([]domain.Evidence)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.NotEmpty(t, r.Error)
	}
}

func TestEngineRun_InvalidRequirement(t *testing.T) {
	e := newEngine("http://127.0.0.1:1", "http://127.0.0.1:1")

	d := e.Run(context.Background(), domain.KindPreTradeRisk, domain.Requirement{})

	assert.Equal(t, false, d["validation_passed"])
	assert.Equal(t, domain.DecisionReject, d["decision"])
	assert.Equal(t, 0, d["risk_score"])
	assert.NotEmpty(t, d["validation_errors"])
	assert.Empty(t, d["evidence"])
}

func TestEngineRun_UnsupportedKind(t *testing.T) {
	e := newEngine("http://127.0.0.1:1", "http://127.0.0.1:1")

	d := e.Run(context.Background(), domain.KindUnknown, domain.Requirement{})

	assert.Equal(t, domain.KindUnknown, d["job_kind"])
	assert.Equal(t, true, d["error"])
	assert.Equal(t, false, d["validation_passed"])
}

func TestSignalSet(t *testing.T) {
	tests := []struct {
		kind      domain.Kind
		wantGas   bool
		wantDepth bool
	}{
		{domain.KindPreTradeRisk, true, true},
		{domain.KindExecutionQuote, true, true},
		{domain.KindMarketIntel, true, true},
		{domain.KindPortfolioRebalance, true, true},
		{domain.KindGasOptimizer, true, false},
		{domain.KindStrategyAudit, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			gas, depth := signalSet(tt.kind)
			assert.Equal(t, tt.wantGas, gas)
			assert.Equal(t, tt.wantDepth, depth)
		})
	}
}

func TestDepthQuery(t *testing.T) {
	t.Run("explicit pair", func(t *testing.T) {
		in, out, notional := depthQuery(domain.KindPreTradeRisk, domain.Requirement{
			"asset_in":           "USDC",
			"asset_out":          "WETH",
			"notional_value_usd": 25000.0,
		})
		assert.Equal(t, "USDC", in)
		assert.Equal(t, "WETH", out)
		assert.Equal(t, 25000.0, notional)
	})

	t.Run("market intel probes the first focus asset", func(t *testing.T) {
		in, out, notional := depthQuery(domain.KindMarketIntel, domain.Requirement{
			"focus_assets": []string{"WETH", "AERO"},
		})
		assert.Equal(t, "WETH", in)
		assert.Equal(t, "USDC", out)
		assert.Equal(t, 10000.0, notional)
	})

	t.Run("rebalance probes the largest position", func(t *testing.T) {
		in, out, notional := depthQuery(domain.KindPortfolioRebalance, domain.Requirement{
			"positions": []domain.Requirement{
				{"asset": "USDC", "notional_usd": 20000.0},
				{"asset": "WETH", "notional_usd": 80000.0},
			},
		})
		assert.Equal(t, "WETH", in)
		assert.Equal(t, "USDC", out)
		assert.Equal(t, 100000.0, notional)
	})
}

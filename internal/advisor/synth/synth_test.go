package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/internal/advisor/validate"
)

func depthPayload() map[string]any {
	return map[string]any{
		"venues": []any{
			map[string]any{"venue": "uniswap_v3", "depth_usd": 2_400_000.0, "fee_bps": 5.0},
			map[string]any{"venue": "curve", "depth_usd": 1_100_000.0, "fee_bps": 4.0},
			map[string]any{"venue": "balancer", "depth_usd": 520_000.0, "fee_bps": 10.0},
		},
		"best_by_depth": map[string]any{"venue": "uniswap_v3", "depth_usd": 2_400_000.0},
	}
}

func gasPayload(level string) map[string]any {
	return map[string]any{
		"congestion_level":         level,
		"base_fee_gwei":            22.4,
		"median_priority_fee_gwei": 1.8,
		"suggested_max_fee_gwei":   46.6,
	}
}

func preTradeInput(req domain.Requirement) Input {
	return Input{Kind: domain.KindPreTradeRisk, Requirement: req}
}

func TestSynthPreTradeRisk_DegradedResources(t *testing.T) {
	// Both resources down: the fallback curve and the mid-band congestion
	// default still yield a complete deliverable.
	d := synthPreTradeRisk(preTradeInput(domain.Requirement{
		"notional_value_usd": 10000.0,
		"max_slippage_bps":   50.0,
		"leverage":           1.0,
	}))

	assert.Equal(t, domain.DecisionApprove, d["decision"])
	assert.Equal(t, 16, d["estimated_slippage_bps"])
	assert.Equal(t, 22, d["risk_score"])
	assert.Equal(t, 1.0, d["size_factor"])
	assert.Equal(t, 20, d["recommended_max_slippage_bps"])
	assert.Equal(t, 1, d["recommended_split_count"])
	assert.Equal(t, domain.ConfidenceLow, d["confidence_level"])
	assert.Equal(t, true, d["validation_passed"])
	assert.Contains(t, d["risk_flags"], "no_depth_data")

	breakdown := d["score_breakdown"].(map[string]int)
	assert.Equal(t, 3, breakdown["size"])
	assert.Equal(t, 4, breakdown["slippage"])
	assert.Equal(t, 15, breakdown["congestion"])
	assert.Equal(t, 0, breakdown["leverage"])
}

func TestSynthPreTradeRisk_RejectOverridesReduce(t *testing.T) {
	d := synthPreTradeRisk(preTradeInput(domain.Requirement{
		"notional_value_usd": 200000.0,
		"max_slippage_bps":   20.0,
		"leverage":           3.0,
	}))

	assert.Equal(t, domain.DecisionReject, d["decision"])
	assert.Equal(t, 100, d["risk_score"])
	assert.Equal(t, 0.0, d["size_factor"])
	assert.Equal(t, 180, d["estimated_slippage_bps"])
	assert.Contains(t, d["risk_flags"], "high_slippage_risk")
	assert.Contains(t, d["risk_flags"], "leveraged_position")
}

func TestSynthPreTradeRisk_ReduceSize(t *testing.T) {
	d := synthPreTradeRisk(preTradeInput(domain.Requirement{
		"notional_value_usd": 30000.0,
		"max_slippage_bps":   20.0,
		"leverage":           1.0,
	}))

	assert.Equal(t, domain.DecisionReduceSize, d["decision"])
	assert.Equal(t, 48, d["estimated_slippage_bps"])
	assert.Equal(t, 0.42, d["size_factor"])
	assert.Less(t, d["risk_score"].(int), 80)
}

func TestSynthPreTradeRisk_DepthBacked(t *testing.T) {
	d := synthPreTradeRisk(Input{
		Kind: domain.KindPreTradeRisk,
		Requirement: domain.Requirement{
			"notional_value_usd": 10000.0,
			"max_slippage_bps":   50.0,
			"leverage":           1.0,
		},
		Gas:   gasPayload("low"),
		Depth: depthPayload(),
	})

	assert.Equal(t, 10, d["estimated_slippage_bps"])
	assert.Equal(t, domain.DecisionApprove, d["decision"])
	assert.NotContains(t, d["risk_flags"], "no_depth_data")
	assert.Empty(t, d["assumptions"])

	breakdown := d["score_breakdown"].(map[string]int)
	assert.Equal(t, 4, breakdown["congestion"])
}

func TestSynthPreTradeRisk_ScoreMonotonicInNotional(t *testing.T) {
	score := func(notional float64) int {
		d := synthPreTradeRisk(preTradeInput(domain.Requirement{
			"notional_value_usd": notional,
			"max_slippage_bps":   2000.0,
			"leverage":           1.0,
		}))
		return d["risk_score"].(int)
	}

	prev := -1
	for _, notional := range []float64{1000, 5000, 20000, 80000, 320000} {
		got := score(notional)
		assert.GreaterOrEqual(t, got, prev, "notional %.0f", notional)
		prev = got
	}
}

func TestSynthExecutionQuote(t *testing.T) {
	t.Run("ranks allowed venues by depth", func(t *testing.T) {
		d := synthExecutionQuote(Input{
			Kind: domain.KindExecutionQuote,
			Requirement: domain.Requirement{
				"notional_value_usd": 50000.0,
				"max_slippage_bps":   200.0,
				"allowed_venues":     []string{"curve", "balancer"},
			},
			Gas:   gasPayload("moderate"),
			Depth: depthPayload(),
		})

		ranking := d["venue_ranking"].([]map[string]any)
		require.Len(t, ranking, 2)
		assert.Equal(t, "curve", ranking[0]["venue"])
		assert.Equal(t, "balancer", ranking[1]["venue"])
		assert.Equal(t, 114, ranking[0]["est_slippage_bps"])
		assert.Equal(t, 240, ranking[1]["est_slippage_bps"])

		// The headline estimate prices against the deepest venue overall.
		assert.Equal(t, 52, d["estimated_slippage_bps"])
		assert.Equal(t, 56, d["expected_cost_bps"])
	})

	t.Run("degrades without depth", func(t *testing.T) {
		d := synthExecutionQuote(Input{
			Kind: domain.KindExecutionQuote,
			Requirement: domain.Requirement{
				"notional_value_usd": 10000.0,
				"max_slippage_bps":   100.0,
				"allowed_venues":     []string{},
			},
		})

		assert.Equal(t, 16, d["estimated_slippage_bps"])
		assert.Equal(t, 22, d["expected_cost_bps"])
		assert.Empty(t, d["venue_ranking"])
		assert.NotEmpty(t, d["assumptions"])
	})
}

func TestSynthMarketIntel(t *testing.T) {
	tests := []struct {
		name      string
		gas       map[string]any
		depth     map[string]any
		req       domain.Requirement
		wantScore int
		wantPost  string
	}{
		{
			name: "mid-band defaults stay neutral",
			req: domain.Requirement{
				"lookback_minutes": 1440.0,
				"risk_tolerance":   "moderate",
			},
			wantScore: 45,
			wantPost:  domain.DecisionNeutral,
		},
		{
			name: "high congestion with a short window goes risk-off",
			gas:  gasPayload("high"),
			req: domain.Requirement{
				"lookback_minutes": 30.0,
				"risk_tolerance":   "moderate",
			},
			wantScore: 85,
			wantPost:  domain.DecisionRiskOff,
		},
		{
			name:  "calm deep market goes risk-on",
			gas:   gasPayload("low"),
			depth: depthPayload(),
			req: domain.Requirement{
				"lookback_minutes": 1440.0,
				"risk_tolerance":   "moderate",
			},
			wantScore: 8,
			wantPost:  domain.DecisionRiskOn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := synthMarketIntel(Input{
				Kind:        domain.KindMarketIntel,
				Requirement: tt.req,
				Gas:         tt.gas,
				Depth:       tt.depth,
			})

			assert.Equal(t, tt.wantScore, d["risk_score"])
			assert.Equal(t, tt.wantScore, d["market_stress_index"])
			assert.Equal(t, tt.wantPost, d["decision"])
		})
	}
}

func TestSynthMarketIntel_ToleranceShiftsThresholds(t *testing.T) {
	// Same stress index, different tolerance: 60 sits below the moderate
	// risk-off threshold but above the conservative one.
	req := func(tol string) domain.Requirement {
		return domain.Requirement{
			"lookback_minutes": 120.0,
			"risk_tolerance":   tol,
		}
	}

	// elevated congestion: 36 + 15 + 9 = 60.
	conservative := synthMarketIntel(Input{Kind: domain.KindMarketIntel, Requirement: req("conservative"), Gas: gasPayload("elevated")})
	moderate := synthMarketIntel(Input{Kind: domain.KindMarketIntel, Requirement: req("moderate"), Gas: gasPayload("elevated")})

	assert.Equal(t, 60, conservative["risk_score"])
	assert.Equal(t, domain.DecisionRiskOff, conservative["decision"])
	assert.Equal(t, domain.DecisionNeutral, moderate["decision"])
}

func TestSynthGasOptimizer(t *testing.T) {
	tests := []struct {
		name     string
		gas      map[string]any
		req      domain.Requirement
		wantDec  string
		wantWait int
	}{
		{
			name:    "unknown conditions submit",
			req:     domain.Requirement{"urgency": "normal", "deadline_minutes": 30.0, "tx_count": 1.0},
			wantDec: domain.DecisionSubmit,
		},
		{
			name:     "elevated congestion defers normal urgency",
			gas:      gasPayload("elevated"),
			req:      domain.Requirement{"urgency": "normal", "deadline_minutes": 30.0, "tx_count": 1.0},
			wantDec:  domain.DecisionWait,
			wantWait: 15,
		},
		{
			name:     "high congestion waits longer",
			gas:      gasPayload("high"),
			req:      domain.Requirement{"urgency": "normal", "deadline_minutes": 30.0, "tx_count": 1.0},
			wantDec:  domain.DecisionWait,
			wantWait: 30,
		},
		{
			name:     "wait never exceeds the deadline",
			gas:      gasPayload("high"),
			req:      domain.Requirement{"urgency": "normal", "deadline_minutes": 10.0, "tx_count": 1.0},
			wantDec:  domain.DecisionWait,
			wantWait: 10,
		},
		{
			name:    "immediate urgency always submits",
			gas:     gasPayload("high"),
			req:     domain.Requirement{"urgency": "immediate", "deadline_minutes": 30.0, "tx_count": 1.0},
			wantDec: domain.DecisionSubmit,
		},
		{
			name:    "high urgency rides out merely elevated congestion",
			gas:     gasPayload("elevated"),
			req:     domain.Requirement{"urgency": "high", "deadline_minutes": 30.0, "tx_count": 1.0},
			wantDec: domain.DecisionSubmit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := synthGasOptimizer(Input{
				Kind:        domain.KindGasOptimizer,
				Requirement: tt.req,
				Gas:         tt.gas,
			})

			assert.Equal(t, tt.wantDec, d["decision"])
			assert.Equal(t, tt.wantWait, d["recommended_wait_minutes"])
		})
	}
}

func TestSynthGasOptimizer_FallbackFees(t *testing.T) {
	d := synthGasOptimizer(Input{
		Kind:        domain.KindGasOptimizer,
		Requirement: domain.Requirement{"urgency": "normal", "deadline_minutes": 30.0, "tx_count": 2.0},
	})

	assert.Equal(t, 25.5, d["recommended_max_fee_gwei"])
	assert.Equal(t, 1.5, d["recommended_priority_fee_gwei"])
	assert.Equal(t, 2, d["tx_count"])
	assert.Equal(t, 45, d["risk_score"])
	assert.NotEmpty(t, d["assumptions"])
}

func TestSynthGasOptimizer_VolatileVarianceWidensScore(t *testing.T) {
	gas := gasPayload("high")
	gas["variance_hint"] = "volatile"

	d := synthGasOptimizer(Input{
		Kind:        domain.KindGasOptimizer,
		Requirement: domain.Requirement{"urgency": "immediate", "deadline_minutes": 30.0, "tx_count": 1.0},
		Gas:         gas,
	})

	assert.Equal(t, 88, d["risk_score"])
}

func TestSynthStrategyAudit(t *testing.T) {
	t.Run("heavy leverage and wide surface reject", func(t *testing.T) {
		d := synthStrategyAudit(Input{
			Kind: domain.KindStrategyAudit,
			Requirement: domain.Requirement{
				"strategy_name":      "recursive-loop",
				"contracts_involved": []string{"a", "b", "c", "d", "e", "f"},
				"severity_floor":     "high",
				"leverage":           5.0,
			},
		})

		assert.Equal(t, domain.DecisionReject, d["decision"])
		assert.Equal(t, 95, d["risk_score"])

		reported := d["audit_findings"].([]auditFinding)
		require.Len(t, reported, 1)
		assert.Equal(t, "high", reported[0].Severity)
	})

	t.Run("modest strategy approves with findings below the floor", func(t *testing.T) {
		d := synthStrategyAudit(Input{
			Kind: domain.KindStrategyAudit,
			Requirement: domain.Requirement{
				"strategy_name":      "stable-lp",
				"contracts_involved": []string{"a", "b"},
				"severity_floor":     "low",
				"leverage":           1.0,
			},
			Gas: gasPayload("low"),
		})

		assert.Equal(t, domain.DecisionApprove, d["decision"])
		assert.Equal(t, 20, d["risk_score"])
		assert.Empty(t, d["audit_findings"])
	})

	t.Run("info floor reports everything", func(t *testing.T) {
		d := synthStrategyAudit(Input{
			Kind: domain.KindStrategyAudit,
			Requirement: domain.Requirement{
				"strategy_name":      "stable-lp",
				"contracts_involved": []string{"a", "b"},
				"severity_floor":     "info",
				"leverage":           2.0,
			},
			Gas: gasPayload("low"),
		})

		reported := d["audit_findings"].([]auditFinding)
		assert.Len(t, reported, 2)
	})
}

func TestSynthPortfolioRebalance(t *testing.T) {
	t.Run("balanced portfolio holds", func(t *testing.T) {
		d := synthPortfolioRebalance(Input{
			Kind: domain.KindPortfolioRebalance,
			Requirement: domain.Requirement{
				"risk_tolerance":   "moderate",
				"objective":        "balanced",
				"max_slippage_bps": 50.0,
				"positions": []domain.Requirement{
					{"asset": "WETH", "amount": 4.0, "notional_usd": 10000.0},
					{"asset": "USDC", "amount": 10000.0, "notional_usd": 10000.0},
				},
			},
		})

		assert.Equal(t, domain.DecisionApprove, d["decision"])
		assert.Equal(t, 0.0, d["turnover_usd"])
		assert.Equal(t, 1.0, d["size_factor"])

		plan := d["rebalance_plan"].([]map[string]any)
		require.Len(t, plan, 2)
		for _, leg := range plan {
			assert.Equal(t, "hold", leg["action"])
			assert.Equal(t, 0.5, leg["current_weight"])
		}
	})

	t.Run("concentrated portfolio reduces", func(t *testing.T) {
		d := synthPortfolioRebalance(Input{
			Kind: domain.KindPortfolioRebalance,
			Requirement: domain.Requirement{
				"risk_tolerance":   "moderate",
				"objective":        "balanced",
				"max_slippage_bps": 50.0,
				"positions": []domain.Requirement{
					{"asset": "WETH", "amount": 30.0, "notional_usd": 80000.0},
					{"asset": "USDC", "amount": 20000.0, "notional_usd": 20000.0},
				},
			},
		})

		assert.Equal(t, domain.DecisionReduceSize, d["decision"])
		assert.Equal(t, 0.75, d["size_factor"])
		assert.Equal(t, 30000.0, d["turnover_usd"])

		plan := d["rebalance_plan"].([]map[string]any)
		require.Len(t, plan, 2)
		assert.Equal(t, "trim", plan[0]["action"])
		assert.Equal(t, "add", plan[1]["action"])
	})
}

func TestRejected(t *testing.T) {
	d := Rejected(domain.KindPreTradeRisk, validate.Result{
		OK:     false,
		Errors: []string{"client_agent_id: must be a non-empty string"},
	})

	assert.Equal(t, "pre-trade-risk", d["job_kind"])
	assert.Equal(t, false, d["validation_passed"])
	assert.Equal(t, []string{"client_agent_id: must be a non-empty string"}, d["validation_errors"])
	assert.Equal(t, domain.DecisionReject, d["decision"])
	assert.Equal(t, 0, d["risk_score"])
	assert.Equal(t, domain.ConfidenceLow, d["confidence_level"])
	assert.Equal(t, []domain.Evidence{}, d["evidence"])
	assert.Equal(t, []string{"no analysis performed on invalid request"}, d["assumptions"])
	assert.NotEmpty(t, d["generated_at"])
}

func TestUnsupported(t *testing.T) {
	d := Unsupported("yield-farming")

	assert.Equal(t, domain.KindUnknown, d["job_kind"])
	assert.Equal(t, true, d["error"])
	assert.Equal(t, "yield-farming", d["requested_kind"])
	assert.Equal(t, "unsupported job kind; no advisory analysis is available", d["message"])
	assert.Equal(t, domain.DecisionReject, d["decision"])
	assert.Equal(t, domain.ConfidenceLow, d["confidence_level"])
}

func TestSynthesize_DispatchesByKind(t *testing.T) {
	for _, kind := range domain.AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			d := Synthesize(Input{Kind: kind, Requirement: domain.Requirement{}})
			assert.Equal(t, string(kind), d["job_kind"])
			assert.Equal(t, true, d["validation_passed"])
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		d := Synthesize(Input{Kind: domain.KindUnknown, Requirement: domain.Requirement{}})
		assert.Equal(t, domain.KindUnknown, d["job_kind"])
		assert.Equal(t, true, d["error"])
	})
}

func TestConfidenceReflectsEvidence(t *testing.T) {
	d := synthPreTradeRisk(Input{
		Kind: domain.KindPreTradeRisk,
		Requirement: domain.Requirement{
			"notional_value_usd": 10000.0,
			"max_slippage_bps":   50.0,
		},
		Evidence: []domain.Evidence{
			{Source: "gas_profile", FreshnessSeconds: 15},
			{Source: "venue_depth", Error: "request failed"},
		},
		Gas: gasPayload("low"),
	})

	assert.Equal(t, domain.ConfidenceMedium, d["confidence_level"])
	records := d["evidence"].([]domain.Evidence)
	assert.Len(t, records, 2)
}

package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// gasSurchargeBps is the execution cost overhead attributed to current
// congestion, folded into the expected cost of a quote.
func gasSurchargeBps(level string) int {
	switch level {
	case "low":
		return 2
	case "moderate":
		return 4
	case "elevated":
		return 8
	case "high":
		return 14
	default:
		return 6
	}
}

// synthExecutionQuote ranks venues by depth and prices the expected
// execution cost. Sub-scores: size (0..30), slippage (0..35), congestion
// (0..26).
func synthExecutionQuote(in Input) domain.Deliverable {
	req := in.Requirement
	notional := numField(req, "notional_value_usd", 0)
	capBps := roundBps(numField(req, "max_slippage_bps", 50))
	allowed := strSliceField(req, "allowed_venues")

	estBps, depthBacked := slippageEstimateBps(notional, in.Depth)
	level := congestionLevel(in.Gas)
	costBps := estBps + gasSurchargeBps(level)

	sizeScore := clampInt(roundBps(notional/5000), 0, 30)
	slipScore := clampInt(estBps/4, 0, 35)
	congScore := congestionScore(level)

	score := clampInt(sizeScore+slipScore+congScore, 0, 100)
	decision, sizeFactor := applyDecisionLadder(score, estBps, capBps)

	ranking := []map[string]any{}
	for _, v := range rankedVenues(in.Depth, allowed) {
		name, _ := v["venue"].(string)
		depthUSD, _ := v["depth_usd"].(float64)
		venueEst := estBps
		if depthUSD > 0 {
			venueEst = clampInt(roundBps(notional/depthUSD*2500), 5, 400)
		}
		ranking = append(ranking, map[string]any{
			"venue":            name,
			"depth_usd":        depthUSD,
			"est_slippage_bps": venueEst,
		})
	}

	findings := []string{
		fmt.Sprintf("expected all-in execution cost %d bps (%d slippage + %d gas)", costBps, estBps, costBps-estBps),
		fmt.Sprintf("%d candidate venue(s) ranked by depth", len(ranking)),
	}

	var assumptions []string
	if !depthBacked {
		assumptions = append(assumptions, "no venue depth available; cost priced from notional-only fallback curve")
	}
	if in.Gas == nil {
		assumptions = append(assumptions, "gas surcharge assumed at the unknown-congestion default")
	}

	d := base(in)
	d["decision"] = decision
	d["risk_score"] = score
	d["size_factor"] = sizeFactor
	d["estimated_slippage_bps"] = estBps
	d["expected_cost_bps"] = costBps
	d["recommended_max_slippage_bps"] = recommendedMaxSlippageBps(capBps, estBps)
	d["recommended_split_count"] = splitCount(notional, 60000, 25000)
	d["venue_ranking"] = ranking
	d["findings"] = findings
	d["assumptions"] = nonNilStrings(assumptions)
	return d
}

package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// synthPreTradeRisk scores an intended swap before execution. Sub-scores:
// size (0..35), slippage (0..30), congestion (0..26), leverage (0..20),
// summed and clamped into [0,100].
func synthPreTradeRisk(in Input) domain.Deliverable {
	req := in.Requirement
	notional := numField(req, "notional_value_usd", 0)
	capBps := roundBps(numField(req, "max_slippage_bps", 50))
	leverage := numField(req, "leverage", 1)

	estBps, depthBacked := slippageEstimateBps(notional, in.Depth)
	level := congestionLevel(in.Gas)

	sizeScore := clampInt(roundBps(notional/4000), 0, 35)
	slipScore := clampInt(estBps/4, 0, 30)
	congScore := congestionScore(level)
	levScore := clampInt(roundBps((leverage-1)*10), 0, 20)

	score := clampInt(sizeScore+slipScore+congScore+levScore, 0, 100)
	decision, sizeFactor := applyDecisionLadder(score, estBps, capBps)

	var flags []string
	if estBps >= 60 {
		flags = append(flags, "high_slippage_risk")
	}
	if congestionElevated(level) {
		flags = append(flags, "elevated_gas_congestion")
	}
	if leverage > 1 {
		flags = append(flags, "leveraged_position")
	}
	if !depthBacked {
		flags = append(flags, "no_depth_data")
	}

	findings := []string{
		fmt.Sprintf("estimated slippage %d bps against a caller cap of %d bps", estBps, capBps),
		fmt.Sprintf("gas congestion is %s", level),
		fmt.Sprintf("composite risk score %d/100", score),
	}

	var assumptions []string
	if !depthBacked {
		assumptions = append(assumptions, "slippage estimated from notional-only fallback curve; venue depth was unavailable")
	}
	if in.Gas == nil {
		assumptions = append(assumptions, "gas conditions unknown; mid-band congestion default applied")
	}

	d := base(in)
	d["decision"] = decision
	d["risk_score"] = score
	d["size_factor"] = sizeFactor
	d["estimated_slippage_bps"] = estBps
	d["recommended_max_slippage_bps"] = recommendedMaxSlippageBps(capBps, estBps)
	d["recommended_split_count"] = splitCount(notional, 75000, 30000)
	d["risk_flags"] = nonNilStrings(flags)
	d["findings"] = findings
	d["assumptions"] = nonNilStrings(assumptions)
	d["score_breakdown"] = map[string]int{
		"size":       sizeScore,
		"slippage":   slipScore,
		"congestion": congScore,
		"leverage":   levScore,
	}
	return d
}

package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// synthMarketIntel computes a market stress index and a trading posture
// instead of an approve/reject ladder. Stress bands: congestion (0..52),
// liquidity (0..30), observation-window penalty (0..18).
func synthMarketIntel(in Input) domain.Deliverable {
	req := in.Requirement
	focus := strSliceField(req, "focus_assets")
	lookback := numField(req, "lookback_minutes", 1440)
	tolerance := strField(req, "risk_tolerance", "moderate")

	level := congestionLevel(in.Gas)
	congStress := clampInt(congestionScore(level)*2, 0, 52)

	// Thin books amplify stress; a deep best venue dampens it.
	liqStress := 15
	if depth := bestDepthUSD(in.Depth); depth > 0 {
		liqStress = clampInt(roundBps(30-depth/25000), 0, 30)
	}

	// Short windows over-weight recent noise.
	windowStress := 0
	if lookback < 60 {
		windowStress = 18
	} else if lookback < 360 {
		windowStress = 9
	}

	score := clampInt(congStress+liqStress+windowStress, 0, 100)

	riskOff, riskOn := 65, 35
	switch tolerance {
	case "conservative":
		riskOff, riskOn = 55, 25
	case "aggressive":
		riskOff, riskOn = 75, 45
	}

	posture := domain.DecisionNeutral
	switch {
	case score >= riskOff:
		posture = domain.DecisionRiskOff
	case score < riskOn:
		posture = domain.DecisionRiskOn
	}

	findings := []string{
		fmt.Sprintf("market stress index %d/100 under %s congestion", score, level),
		fmt.Sprintf("posture %s for a %s risk tolerance", posture, tolerance),
	}
	for _, asset := range focus {
		findings = append(findings, fmt.Sprintf("%s: posture %s over a %d-minute window", asset, posture, roundBps(lookback)))
	}

	var assumptions []string
	if in.Gas == nil {
		assumptions = append(assumptions, "congestion stress assumed mid-band; gas profile unavailable")
	}
	if in.Depth == nil {
		assumptions = append(assumptions, "liquidity stress assumed mid-band; venue depth unavailable")
	}

	d := base(in)
	d["decision"] = posture
	d["risk_score"] = score
	d["market_stress_index"] = score
	d["focus_assets"] = nonNilStrings(focus)
	d["findings"] = findings
	d["assumptions"] = nonNilStrings(assumptions)
	d["stress_breakdown"] = map[string]int{
		"congestion":  congStress,
		"liquidity":   liqStress,
		"observation": windowStress,
	}
	return d
}

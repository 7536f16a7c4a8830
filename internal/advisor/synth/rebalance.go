package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// A single asset above this weight marks the portfolio as concentrated and
// triggers a reduce decision on its own.
const concentrationCap = 0.60

// synthPortfolioRebalance plans trims and adds toward an equal-weight
// target. Sub-scores: concentration (0..40), turnover slippage (0..25),
// congestion (0..26), tolerance adjustment (0..10).
func synthPortfolioRebalance(in Input) domain.Deliverable {
	req := in.Requirement
	tolerance := strField(req, "risk_tolerance", "moderate")
	objective := strField(req, "objective", "balanced")
	capBps := roundBps(numField(req, "max_slippage_bps", 50))
	positions := positionList(req)

	total := 0.0
	for _, p := range positions {
		total += numField(p, "notional_usd", 0)
	}

	target := 0.0
	if len(positions) > 0 {
		target = 1.0 / float64(len(positions))
	}

	plan := []map[string]any{}
	maxWeight := 0.0
	turnover := 0.0
	for _, p := range positions {
		notional := numField(p, "notional_usd", 0)
		weight := 0.0
		if total > 0 {
			weight = notional / total
		}
		if weight > maxWeight {
			maxWeight = weight
		}

		action := "hold"
		drift := weight - target
		if drift > 0.10 {
			action = "trim"
		} else if drift < -0.10 {
			action = "add"
		}
		// Overweight positions are sold; every sell funds a matching buy,
		// so summing the positive drifts prices the full turnover.
		if drift > 0 {
			turnover += drift * total
		}

		plan = append(plan, map[string]any{
			"asset":          strField(p, "asset", "?"),
			"current_weight": round2(weight),
			"target_weight":  round2(target),
			"action":         action,
		})
	}

	estBps, depthBacked := slippageEstimateBps(turnover, in.Depth)
	level := congestionLevel(in.Gas)

	concScore := clampInt(roundBps((maxWeight-0.4)*150), 0, 40)
	slipScore := clampInt(estBps/5, 0, 25)
	congScore := congestionScore(level)
	tolScore := 0
	if tolerance == "conservative" {
		tolScore = 10
	} else if tolerance == "moderate" {
		tolScore = 5
	}

	score := clampInt(concScore+slipScore+congScore+tolScore, 0, 100)

	// Concentration is this kind's reduce trigger; the reject threshold
	// still overrides last.
	decision := domain.DecisionApprove
	sizeFactor := 1.0
	if maxWeight > concentrationCap {
		decision = domain.DecisionReduceSize
		sizeFactor = round2(clampF(concentrationCap/maxWeight, 0.2, 0.8))
	}
	if score >= rejectScoreThreshold {
		decision = domain.DecisionReject
		sizeFactor = 0
	}

	findings := []string{
		fmt.Sprintf("portfolio of %d position(s), %.0f USD total, max weight %.0f%%", len(positions), total, maxWeight*100),
		fmt.Sprintf("rebalance turnover %.0f USD at an estimated %d bps against cap %d", turnover, estBps, capBps),
		fmt.Sprintf("objective %s under %s tolerance", objective, tolerance),
	}

	var assumptions []string
	if !depthBacked {
		assumptions = append(assumptions, "turnover slippage estimated from notional-only fallback curve")
	}
	if in.Gas == nil {
		assumptions = append(assumptions, "congestion contribution assumed mid-band; gas profile unavailable")
	}

	d := base(in)
	d["decision"] = decision
	d["risk_score"] = score
	d["size_factor"] = sizeFactor
	d["rebalance_plan"] = plan
	d["turnover_usd"] = round2(turnover)
	d["estimated_slippage_bps"] = estBps
	d["findings"] = findings
	d["assumptions"] = nonNilStrings(assumptions)
	return d
}

// positionList reads the validator-normalized positions array.
func positionList(req domain.Requirement) []domain.Requirement {
	if v, ok := req["positions"].([]domain.Requirement); ok {
		return v
	}
	return nil
}

package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// Conservative fee defaults applied when the gas profile is unavailable.
const (
	fallbackBaseFeeGwei     = 12.0
	fallbackPriorityFeeGwei = 1.5
)

// synthGasOptimizer recommends submission timing and fee caps. The score
// is congestion risk alone, widened by the resource's variance hint.
func synthGasOptimizer(in Input) domain.Deliverable {
	req := in.Requirement
	urgency := strField(req, "urgency", "normal")
	deadline := numField(req, "deadline_minutes", 30)
	txCount := numField(req, "tx_count", 1)

	level := congestionLevel(in.Gas)
	baseFee := gasNum(in.Gas, "base_fee_gwei", fallbackBaseFeeGwei)
	priorityFee := gasNum(in.Gas, "median_priority_fee_gwei", fallbackPriorityFeeGwei)
	maxFee := gasNum(in.Gas, "suggested_max_fee_gwei", baseFee*2+priorityFee)

	score := clampInt(congestionScore(level)*3, 0, 100)
	variance, _ := gasStr(in.Gas, "variance_hint")
	if variance == "volatile" {
		score = clampInt(score+10, 0, 100)
	}

	// Immediate work always submits; otherwise elevated congestion defers
	// non-urgent transactions inside their deadline.
	decision := domain.DecisionSubmit
	waitMinutes := 0
	if urgency != "immediate" && congestionElevated(level) {
		if !(urgency == "high" && level == "elevated") {
			decision = domain.DecisionWait
			waitMinutes = 15
			if level == "high" {
				waitMinutes = 30
			}
			if float64(waitMinutes) > deadline {
				waitMinutes = roundBps(deadline)
			}
		}
	}

	findings := []string{
		fmt.Sprintf("congestion %s; base fee %.2f gwei, median priority %.2f gwei", level, baseFee, priorityFee),
		fmt.Sprintf("timing decision %s for urgency %s", decision, urgency),
	}
	if decision == domain.DecisionWait {
		findings = append(findings, fmt.Sprintf("re-evaluate in %d minute(s), within the %d-minute deadline", waitMinutes, roundBps(deadline)))
	}

	var assumptions []string
	if in.Gas == nil {
		assumptions = append(assumptions, "fee figures are conservative defaults; gas profile unavailable")
	}

	d := base(in)
	d["decision"] = decision
	d["risk_score"] = score
	d["congestion_level"] = level
	d["recommended_max_fee_gwei"] = round2(maxFee)
	d["recommended_priority_fee_gwei"] = round2(priorityFee)
	d["recommended_wait_minutes"] = waitMinutes
	d["tx_count"] = roundBps(txCount)
	d["findings"] = findings
	d["assumptions"] = nonNilStrings(assumptions)
	return d
}

func gasNum(gas map[string]any, key string, def float64) float64 {
	if gas == nil {
		return def
	}
	if v, ok := parseAnyNumber(gas[key]); ok {
		return v
	}
	return def
}

func gasStr(gas map[string]any, key string) (string, bool) {
	if gas == nil {
		return "", false
	}
	s, ok := gas[key].(string)
	return s, ok
}

// parseAnyNumber tolerates the numeric widenings a decoded JSON payload
// can carry.
func parseAnyNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

package synth

import (
	"fmt"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// Finding severities, ordered from least to most severe.
var severityRank = map[string]int{
	"info":     0,
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

type auditFinding struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// synthStrategyAudit reviews a strategy's structural risk. Sub-scores:
// contract surface (0..40), leverage (0..40), congestion (0..20).
func synthStrategyAudit(in Input) domain.Deliverable {
	req := in.Requirement
	strategy := strField(req, "strategy_name", "unnamed strategy")
	contracts := strSliceField(req, "contracts_involved")
	floor := strField(req, "severity_floor", "low")
	leverage := numField(req, "leverage", 1)

	level := congestionLevel(in.Gas)

	contractScore := clampInt(len(contracts)*8, 0, 40)
	levScore := clampInt(roundBps((leverage-1)*20), 0, 40)
	congScore := clampInt(congestionScore(level), 0, 20)
	score := clampInt(contractScore+levScore+congScore, 0, 100)

	var findings []auditFinding
	if len(contracts) > 5 {
		findings = append(findings, auditFinding{"medium",
			fmt.Sprintf("wide contract surface: %d contracts involved", len(contracts))})
	} else {
		findings = append(findings, auditFinding{"info",
			fmt.Sprintf("%d contract(s) in scope", len(contracts))})
	}
	if leverage > 3 {
		findings = append(findings, auditFinding{"high",
			fmt.Sprintf("leverage %.1fx exceeds the 3x prudential band", leverage)})
	} else if leverage > 1 {
		findings = append(findings, auditFinding{"medium",
			fmt.Sprintf("strategy employs %.1fx leverage", leverage)})
	}
	if congestionElevated(level) {
		findings = append(findings, auditFinding{"low",
			fmt.Sprintf("%s congestion raises unwind cost while the audit stands", level)})
	}
	if in.Gas == nil {
		findings = append(findings, auditFinding{"info",
			"gas conditions unavailable; operational cost unassessed"})
	}

	// The severity floor gates which findings are reported, not how the
	// score is computed.
	reported := []auditFinding{}
	minRank := severityRank[floor]
	for _, f := range findings {
		if severityRank[f.Severity] >= minRank {
			reported = append(reported, f)
		}
	}

	decision := domain.DecisionApprove
	if score >= rejectScoreThreshold {
		decision = domain.DecisionReject
	}

	var assumptions []string
	if in.Gas == nil {
		assumptions = append(assumptions, "congestion contribution assumed mid-band; gas profile unavailable")
	}

	d := base(in)
	d["decision"] = decision
	d["risk_score"] = score
	d["strategy_name"] = strategy
	d["severity_floor"] = floor
	d["audit_findings"] = reported
	d["findings"] = []string{
		fmt.Sprintf("audit of %q produced %d finding(s) at or above severity %s", strategy, len(reported), floor),
		fmt.Sprintf("structural risk score %d/100", score),
	}
	d["assumptions"] = nonNilStrings(assumptions)
	d["score_breakdown"] = map[string]int{
		"contract_surface": contractScore,
		"leverage":         levScore,
		"congestion":       congScore,
	}
	return d
}

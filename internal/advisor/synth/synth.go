// Package synth turns a normalized request plus gathered evidence into an
// advisory deliverable. Synthesizers are pure: the same request, evidence,
// and fetched data always produce the same decision, score, and findings.
package synth

import (
	"time"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/internal/advisor/evidence"
	"github.com/quantrelay/trade-advisor/internal/advisor/validate"
)

// A risk score at or above this threshold forces a rejection regardless of
// any earlier reduce decision.
const rejectScoreThreshold = 80

// Input carries everything a synthesizer needs. Gas and Depth are nil when
// the corresponding fetch failed or was not required for the kind.
type Input struct {
	Kind        domain.Kind
	Requirement domain.Requirement
	Evidence    []domain.Evidence
	Gas         map[string]any
	Depth       map[string]any
}

// Synthesize produces the deliverable for a validated request.
func Synthesize(in Input) domain.Deliverable {
	switch in.Kind {
	case domain.KindPreTradeRisk:
		return synthPreTradeRisk(in)
	case domain.KindExecutionQuote:
		return synthExecutionQuote(in)
	case domain.KindMarketIntel:
		return synthMarketIntel(in)
	case domain.KindGasOptimizer:
		return synthGasOptimizer(in)
	case domain.KindStrategyAudit:
		return synthStrategyAudit(in)
	case domain.KindPortfolioRebalance:
		return synthPortfolioRebalance(in)
	default:
		return Unsupported(string(in.Kind))
	}
}

// Rejected emits the fixed no-analysis shape for a request that failed
// validation: zero score, rejecting decision, empty evidence.
func Rejected(kind domain.Kind, result validate.Result) domain.Deliverable {
	return domain.Deliverable{
		"job_kind":          string(kind),
		"validation_passed": false,
		"validation_errors": nonNilStrings(result.Errors),
		"decision":          domain.DecisionReject,
		"risk_score":        0,
		"confidence_level":  domain.ConfidenceLow,
		"findings":          []string{"request rejected: requirement failed validation"},
		"evidence":          []domain.Evidence{},
		"assumptions":       []string{"no analysis performed on invalid request"},
		"generated_at":      timestamp(),
	}
}

// Unsupported emits the fixed deliverable for a job kind outside the
// closed set, including delivery for a job that was never negotiated.
func Unsupported(rawKind string) domain.Deliverable {
	return domain.Deliverable{
		"job_kind":          domain.KindUnknown,
		"error":             true,
		"message":           "unsupported job kind; no advisory analysis is available",
		"requested_kind":    rawKind,
		"validation_passed": false,
		"validation_errors": []string{},
		"decision":          domain.DecisionReject,
		"risk_score":        0,
		"confidence_level":  domain.ConfidenceLow,
		"findings":          []string{},
		"evidence":          []domain.Evidence{},
		"generated_at":      timestamp(),
	}
}

// base assembles the fields shared by every successful deliverable.
func base(in Input) domain.Deliverable {
	return domain.Deliverable{
		"job_kind":          string(in.Kind),
		"validation_passed": true,
		"validation_errors": []string{},
		"confidence_level":  evidence.Confidence(in.Evidence),
		"evidence":          nonNilEvidence(in.Evidence),
		"generated_at":      timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilEvidence(e []domain.Evidence) []domain.Evidence {
	if e == nil {
		return []domain.Evidence{}
	}
	return e
}

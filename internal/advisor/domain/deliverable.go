package domain

// Deliverable is the synthesized advisory output signaled back to the
// transport at delivery. It is kept as a plain mapping because its JSON
// shape is the externally observed contract and must stay stable.
type Deliverable map[string]any

// Decision values emitted in deliverables.
const (
	DecisionApprove    = "APPROVE"
	DecisionReduceSize = "REDUCE_SIZE"
	DecisionReject     = "REJECT"

	// gas-optimizer timing decisions
	DecisionSubmit = "SUBMIT"
	DecisionWait   = "WAIT"

	// market-intel postures
	DecisionRiskOn  = "RISK_ON"
	DecisionNeutral = "NEUTRAL"
	DecisionRiskOff = "RISK_OFF"
)

// Confidence levels derived from the gathered evidence sources.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Evidence is a provenance-tagged record of one external data fetch. A
// failed fetch still yields an entry, carrying Error instead of freshness.
type Evidence struct {
	Source           string `json:"source"`
	FreshnessSeconds int    `json:"freshness_seconds,omitempty"`
	Error            string `json:"error,omitempty"`
}

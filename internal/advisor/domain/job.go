package domain

// Requirement is the caller-supplied parameter mapping for a job. Validators
// mutate it in place (trimmed enums, parsed numbers, defaulted optionals) so
// downstream code always sees normalized values, even on invalid input.
type Requirement map[string]any

// CachedJob is the (kind, requirement) pair stored between the negotiation
// and delivery phases of one job.
type CachedJob struct {
	JobID       string
	Kind        Kind
	Requirement Requirement
}

// PhaseMemo carries the transport's phase-transition metadata. Only PENDING
// memos require action.
type PhaseMemo struct {
	Status    string `json:"status"`
	NextPhase int    `json:"next_phase"`
}

// Notification is one phase-transition event from the transport. The job
// kind and requirement live either in Content (primary) or RawInput
// (fallback), each as {name, requirement}.
type Notification struct {
	JobID    string         `json:"job_id"`
	Memo     PhaseMemo      `json:"memo"`
	Content  map[string]any `json:"content,omitempty"`
	RawInput map[string]any `json:"raw_input,omitempty"`
}

// Memo status and phase targets used by the transport.
const (
	MemoStatusPending = "PENDING"

	PhaseNegotiation = 1
	PhaseDelivery    = 3
)

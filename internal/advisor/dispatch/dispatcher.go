// Package dispatch implements the two-phase job lifecycle state machine.
// Negotiation (phase 1) caches the requirement and signals acceptance;
// delivery (phase 3) runs the pipeline on the cached requirement and
// signals the deliverable.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantrelay/trade-advisor/internal/advisor"
	"github.com/quantrelay/trade-advisor/internal/advisor/cache"
	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// The fixed rationale sent with every negotiation acceptance.
const acceptRationale = "Requirement received and cached; the advisory deliverable follows at the delivery phase."

// Transport is the narrow slice of the negotiation/settlement collaborator
// this system drives.
type Transport interface {
	SignalAccept(ctx context.Context, jobID string, approve bool, rationale string) error
	SignalDeliver(ctx context.Context, jobID string, deliverable domain.Deliverable) error
}

// Config holds dispatcher dependencies.
type Config struct {
	Cache        *cache.Store
	Engine       *advisor.Engine
	Transport    Transport
	DefaultChain string
	Logger       *slog.Logger
}

// Dispatcher routes phase-transition notifications.
type Dispatcher struct {
	cache        *cache.Store
	engine       *advisor.Engine
	transport    Transport
	defaultChain string
	logger       *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg *Config) *Dispatcher {
	return &Dispatcher{
		cache:        cfg.Cache,
		engine:       cfg.Engine,
		transport:    cfg.Transport,
		defaultChain: cfg.DefaultChain,
		logger:       cfg.Logger,
	}
}

// HandleNotification processes one phase-transition notification. Memos
// that are not PENDING, and phase targets other than negotiation and
// delivery, are deliberate no-ops.
func (d *Dispatcher) HandleNotification(ctx context.Context, n domain.Notification) error {
	if n.Memo.Status != domain.MemoStatusPending {
		d.logger.Debug("Notification requires no action",
			slog.String("job_id", n.JobID),
			slog.String("memo_status", n.Memo.Status),
		)
		return nil
	}

	switch n.Memo.NextPhase {
	case domain.PhaseNegotiation:
		return d.negotiate(ctx, n)
	case domain.PhaseDelivery:
		return d.deliver(ctx, n)
	default:
		d.logger.Debug("Unhandled phase target",
			slog.String("job_id", n.JobID),
			slog.Int("next_phase", n.Memo.NextPhase),
		)
		return nil
	}
}

// negotiate extracts the job kind and requirement, caches them, and
// signals acceptance.
func (d *Dispatcher) negotiate(ctx context.Context, n domain.Notification) error {
	name, requirement := extractJobInput(n)

	if d.defaultChain != "" {
		if chain, _ := requirement["chain"].(string); chain == "" {
			requirement["chain"] = d.defaultChain
		}
	}

	kind := domain.ParseKind(name)
	d.cache.Set(n.JobID, domain.CachedJob{Kind: kind, Requirement: requirement})

	d.logger.Info("Job negotiated",
		slog.String("job_id", n.JobID),
		slog.String("job_kind", string(kind)),
	)

	if err := d.transport.SignalAccept(ctx, n.JobID, true, acceptRationale); err != nil {
		return fmt.Errorf("failed to signal acceptance for job %s: %w", n.JobID, err)
	}
	return nil
}

// deliver runs the pipeline on the cached requirement and signals the
// deliverable. A cache miss degrades to an unsupported-job deliverable but
// is logged, since it usually means the transport skipped negotiation.
func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) error {
	entry, found := d.cache.Get(n.JobID)
	if !found {
		d.logger.Warn("Delivery requested for a job that was never negotiated",
			slog.String("job_id", n.JobID),
		)
	}

	deliverable := d.engine.Run(ctx, entry.Kind, entry.Requirement)

	d.logger.Info("Job delivered",
		slog.String("job_id", n.JobID),
		slog.String("job_kind", string(entry.Kind)),
		slog.Any("decision", deliverable["decision"]),
	)

	if err := d.transport.SignalDeliver(ctx, n.JobID, deliverable); err != nil {
		return fmt.Errorf("failed to signal delivery for job %s: %w", n.JobID, err)
	}
	return nil
}

// extractJobInput reads {name, requirement} from the notification content,
// falling back to the raw job input when content is absent.
func extractJobInput(n domain.Notification) (string, domain.Requirement) {
	payload := n.Content
	if _, ok := payload["name"]; !ok {
		payload = n.RawInput
	}
	name, _ := payload["name"].(string)

	requirement := domain.Requirement{}
	if raw, ok := payload["requirement"].(map[string]any); ok {
		for k, v := range raw {
			requirement[k] = v
		}
	}
	return name, requirement
}

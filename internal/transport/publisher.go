package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/shared/rabbitmq"
)

// PublisherConfig holds the routing keys for outbound signals.
type PublisherConfig struct {
	RabbitClient      *rabbitmq.Client
	AcceptRoutingKey  string
	DeliverRoutingKey string
	Logger            *slog.Logger
}

// Publisher implements dispatch.Transport over AMQP.
type Publisher struct {
	rabbitClient      *rabbitmq.Client
	acceptRoutingKey  string
	deliverRoutingKey string
	logger            *slog.Logger
}

// NewPublisher creates a signal publisher.
func NewPublisher(cfg *PublisherConfig) *Publisher {
	return &Publisher{
		rabbitClient:      cfg.RabbitClient,
		acceptRoutingKey:  cfg.AcceptRoutingKey,
		deliverRoutingKey: cfg.DeliverRoutingKey,
		logger:            cfg.Logger,
	}
}

// acceptSignal is the wire shape of a negotiation acceptance.
type acceptSignal struct {
	JobID      string `json:"job_id"`
	Approve    bool   `json:"approve"`
	Rationale  string `json:"rationale"`
	SignaledAt string `json:"signaled_at"`
}

// deliverSignal is the wire shape of a delivery.
type deliverSignal struct {
	JobID       string             `json:"job_id"`
	Deliverable domain.Deliverable `json:"deliverable"`
	SignaledAt  string             `json:"signaled_at"`
}

// SignalAccept publishes the negotiation acceptance for a job.
func (p *Publisher) SignalAccept(ctx context.Context, jobID string, approve bool, rationale string) error {
	body, err := json.Marshal(acceptSignal{
		JobID:      jobID,
		Approve:    approve,
		Rationale:  rationale,
		SignaledAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode accept signal: %w", err)
	}

	if err := p.rabbitClient.PublishWithRetry(ctx, p.acceptRoutingKey, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish accept signal: %w", err)
	}

	p.logger.Debug("Accept signal published",
		slog.String("job_id", jobID),
		slog.Bool("approve", approve),
	)
	return nil
}

// SignalDeliver publishes the deliverable for a job.
func (p *Publisher) SignalDeliver(ctx context.Context, jobID string, deliverable domain.Deliverable) error {
	body, err := json.Marshal(deliverSignal{
		JobID:       jobID,
		Deliverable: deliverable,
		SignaledAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode deliver signal: %w", err)
	}

	if err := p.rabbitClient.PublishWithRetry(ctx, p.deliverRoutingKey, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish deliver signal: %w", err)
	}

	p.logger.Debug("Deliver signal published",
		slog.String("job_id", jobID),
	)
	return nil
}

// Package transport adapts the AMQP broker to the dispatcher: it consumes
// phase notifications and publishes the accept/deliver signals.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/quantrelay/trade-advisor/internal/advisor/dispatch"
	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
	"github.com/quantrelay/trade-advisor/shared/rabbitmq"
)

// ConsumerConfig holds consumer dependencies and tuning.
type ConsumerConfig struct {
	RabbitClient  *rabbitmq.Client
	Dispatcher    *dispatch.Dispatcher
	Concurrency   int
	PrefetchCount int
	Logger        *slog.Logger
}

// Consumer reads phase notifications from the queue and hands them to a
// pool of dispatcher goroutines.
type Consumer struct {
	rabbitClient  *rabbitmq.Client
	dispatcher    *dispatch.Dispatcher
	concurrency   int
	prefetchCount int
	consumerID    string
	logger        *slog.Logger
	wg            sync.WaitGroup
	notifications chan notificationMessage
}

// notificationMessage pairs a decoded notification with its delivery tag
// for ack/nack.
type notificationMessage struct {
	notification domain.Notification
	deliveryTag  uint64
}

// NewConsumer creates a consumer with a unique consumer tag.
func NewConsumer(cfg *ConsumerConfig) *Consumer {
	return &Consumer{
		rabbitClient:  cfg.RabbitClient,
		dispatcher:    cfg.Dispatcher,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		consumerID:    fmt.Sprintf("advisor-%s", uuid.NewString()[:8]),
		logger:        cfg.Logger,
		notifications: make(chan notificationMessage),
	}
}

// Start begins consuming and blocks until the context is canceled and the
// worker pool has drained.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.setupConsumer()
	if err != nil {
		return err
	}

	c.spawnPool(ctx)
	c.dispatchLoop(ctx, deliveries)

	c.wg.Wait()
	c.logger.Info("Consumer stopped",
		slog.String("consumer_id", c.consumerID),
	)
	return nil
}

// setupConsumer applies QoS and opens the delivery stream.
func (c *Consumer) setupConsumer() (<-chan amqp.Delivery, error) {
	channel := c.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// prefetch is per-consumer so concurrent advisors share the queue fairly
	if err := channel.Qos(c.prefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.rabbitClient.Consume(c.consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Notification consumer started",
		slog.String("consumer_id", c.consumerID),
		slog.Int("prefetch_count", c.prefetchCount),
	)
	return deliveries, nil
}

// dispatchLoop decodes deliveries and feeds the worker pool. Malformed
// notifications are nacked without requeue.
func (c *Consumer) dispatchLoop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Notification dispatcher stopped - context canceled")
			close(c.notifications)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed")
				close(c.notifications)
				return
			}

			var n domain.Notification
			if err := json.Unmarshal(delivery.Body, &n); err != nil || n.JobID == "" {
				c.logger.Error("Malformed notification payload",
					slog.String("body", string(delivery.Body)),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					c.logger.Error("Failed to NACK malformed notification",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			msg := notificationMessage{notification: n, deliveryTag: delivery.DeliveryTag}
			select {
			case c.notifications <- msg:
			case <-ctx.Done():
				c.logger.Info("Notification dispatcher stopped while dispatching")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					c.logger.Error("Failed to NACK notification on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				close(c.notifications)
				return
			}
		}
	}
}

// spawnPool starts the handler goroutines.
func (c *Consumer) spawnPool(ctx context.Context) {
	c.logger.Info("Spawning notification handler pool",
		slog.Int("concurrency", c.concurrency),
	)
	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go c.handlerLoop(ctx, i)
	}
}

// handlerLoop processes notifications until the channel closes. Handler
// errors are signal-publish failures, which are transient, so the
// notification is requeued.
func (c *Consumer) handlerLoop(ctx context.Context, handlerNum int) {
	defer c.wg.Done()

	handlerName := fmt.Sprintf("%s-%d", c.consumerID, handlerNum)
	for msg := range c.notifications {
		err := c.dispatcher.HandleNotification(ctx, msg.notification)

		channel := c.rabbitClient.GetChannel()
		if channel == nil {
			c.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
				slog.String("handler", handlerName),
				slog.String("job_id", msg.notification.JobID),
			)
			continue
		}

		if err != nil {
			c.logger.Error("Notification handling failed",
				slog.String("handler", handlerName),
				slog.String("job_id", msg.notification.JobID),
				slog.String("error", err.Error()),
			)
			if nackErr := channel.Nack(msg.deliveryTag, false, true); nackErr != nil {
				c.logger.Error("Failed to NACK notification",
					slog.String("handler", handlerName),
					slog.String("error", nackErr.Error()),
				)
			}
			continue
		}

		if ackErr := channel.Ack(msg.deliveryTag, false); ackErr != nil {
			c.logger.Error("Failed to ACK notification",
				slog.String("handler", handlerName),
				slog.String("error", ackErr.Error()),
			)
		}
	}

	c.logger.Info("Notification handler stopped",
		slog.String("handler", handlerName),
	)
}

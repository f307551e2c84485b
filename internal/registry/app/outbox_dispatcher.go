package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// Publisher is the broker surface the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// DispatcherConfig holds configuration specific to the OutboxDispatcher.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// OutboxDispatcher drains the event outbox to the message broker. Failed
// publishes are retried with exponential backoff; once a message exhausts
// MaxAttempts it is marked dead and never retried again.
type OutboxDispatcher struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	config    DispatcherConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewOutboxDispatcher creates an OutboxDispatcher.
func NewOutboxDispatcher(outbox repository.OutboxRepository, publisher Publisher, config DispatcherConfig, logger *slog.Logger) *OutboxDispatcher {
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	return &OutboxDispatcher{
		outbox:    outbox,
		publisher: publisher,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until the context is canceled.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()
	d.logger.Info("Outbox dispatcher started", "poll_interval", d.config.PollInterval, "batch_size", d.config.BatchSize)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if _, err := d.Dispatch(ctx); err != nil {
				d.logger.ErrorContext(ctx, "Outbox dispatch cycle failed", "error", err)
			}
		}
	}
}

// Dispatch runs one drain cycle and returns how many messages it attempted.
func (d *OutboxDispatcher) Dispatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(outboxDispatchDurationHist.WithLabelValues())
	defer timer.ObserveDuration()

	messages, err := d.outbox.AcquirePending(ctx, d.now().UTC(), d.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire pending outbox messages: %w", err)
	}

	attempted := 0
	for _, msg := range messages {
		attempted++
		if err := d.publisher.Publish(ctx, msg.Subject, msg.Payload); err != nil {
			d.handleFailure(ctx, msg, err)
			continue
		}
		if err := d.outbox.MarkPublished(ctx, msg.ID); err != nil {
			d.logger.ErrorContext(ctx, "Failed to mark outbox message published", "error", err, "message_id", msg.ID)
			continue
		}
		outboxPublishedCounter.WithLabelValues(msg.Subject, "published").Inc()
	}
	return attempted, nil
}

func (d *OutboxDispatcher) handleFailure(ctx context.Context, msg domain.OutboxMessage, publishErr error) {
	attempts := msg.Attempts + 1
	if attempts >= d.config.MaxAttempts {
		d.logger.ErrorContext(ctx, "Outbox message exhausted attempts, marking dead",
			"message_id", msg.ID, "subject", msg.Subject, "attempts", attempts, "error", publishErr)
		if err := d.outbox.MarkDead(ctx, msg.ID, publishErr.Error()); err != nil {
			d.logger.ErrorContext(ctx, "Failed to mark outbox message dead", "error", err, "message_id", msg.ID)
		}
		outboxPublishedCounter.WithLabelValues(msg.Subject, "dead").Inc()
		return
	}

	nextAttempt := d.now().UTC().Add(backoff(attempts))
	d.logger.WarnContext(ctx, "Outbox publish failed, scheduling retry",
		"message_id", msg.ID, "subject", msg.Subject, "attempts", attempts, "next_attempt_at", nextAttempt, "error", publishErr)
	if err := d.outbox.MarkFailed(ctx, msg.ID, attempts, publishErr.Error(), nextAttempt); err != nil {
		d.logger.ErrorContext(ctx, "Failed to record outbox failure", "error", err, "message_id", msg.ID)
	}
	outboxPublishedCounter.WithLabelValues(msg.Subject, "retried").Inc()
}

// backoff doubles per attempt starting at one second, capped at five
// minutes.
func backoff(attempts int) time.Duration {
	d := time.Second << uint(attempts-1)
	if d > 5*time.Minute || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// appendEvent queues a domain event for publication. Event delivery is
// best-effort relative to the mutation: a failed append is logged and does
// not fail the operation that produced it.
func appendEvent(ctx context.Context, outbox repository.OutboxRepository, logger *slog.Logger, subject string, payload any) {
	if outbox == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal event payload", "error", err, "subject", subject)
		return
	}
	msg := &domain.OutboxMessage{Subject: subject, Payload: data}
	if err := outbox.Append(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to append event to outbox", "error", err, "subject", subject)
	}
}

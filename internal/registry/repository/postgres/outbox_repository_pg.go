package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// PgOutboxRepository stores the event outbox in PostgreSQL. AcquirePending
// uses SKIP LOCKED so concurrent dispatchers never double-deliver a batch.
type PgOutboxRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgOutboxRepository(db *pgxpool.Pool, logger *slog.Logger) repository.OutboxRepository {
	return &PgOutboxRepository{db: db, logger: logger.With("component", "outbox_repository_pg")}
}

func (r *PgOutboxRepository) Append(ctx context.Context, msg *domain.OutboxMessage) error {
	now := time.Now().UTC()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = domain.OutboxStatusPending
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now
	if msg.NextAttemptAt.IsZero() {
		msg.NextAttemptAt = now
	}

	query := `INSERT INTO outbox_messages (id, subject, payload, status, attempts, next_attempt_at, last_error, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.Subject, msg.Payload, msg.Status, msg.Attempts,
		msg.NextAttemptAt, msg.LastError, msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to append outbox message", "error", err, "subject", msg.Subject)
		return fmt.Errorf("appending outbox message: %w", err)
	}
	return nil
}

func (r *PgOutboxRepository) AcquirePending(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error) {
	query := `SELECT id, subject, payload, status, attempts, next_attempt_at, last_error, created_at, updated_at
	          FROM outbox_messages
	          WHERE status = $1 AND next_attempt_at <= $2
	          ORDER BY created_at
	          LIMIT $3
	          FOR UPDATE SKIP LOCKED`
	rows, err := r.db.Query(ctx, query, domain.OutboxStatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.OutboxMessage{}
	for rows.Next() {
		var m domain.OutboxMessage
		if err := rows.Scan(&m.ID, &m.Subject, &m.Payload, &m.Status, &m.Attempts,
			&m.NextAttemptAt, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning outbox row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *PgOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	query := `UPDATE outbox_messages SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, domain.OutboxStatusPublished, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marking outbox message %s published: %w", id, err)
	}
	return nil
}

func (r *PgOutboxRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttemptAt time.Time) error {
	query := `UPDATE outbox_messages SET attempts = $2, last_error = $3, next_attempt_at = $4, updated_at = $5 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, attempts, lastError, nextAttemptAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marking outbox message %s failed: %w", id, err)
	}
	return nil
}

func (r *PgOutboxRepository) MarkDead(ctx context.Context, id string, lastError string) error {
	query := `UPDATE outbox_messages SET status = $2, last_error = $3, updated_at = $4 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, domain.OutboxStatusDead, lastError, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marking outbox message %s dead: %w", id, err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// PgSessionRepository stores login sessions in PostgreSQL. Expiry is
// enforced at lookup; expired rows are kept.
type PgSessionRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

func NewPgSessionRepository(db *pgxpool.Pool, logger *slog.Logger) repository.SessionRepository {
	return &PgSessionRepository{
		db:     db,
		logger: logger.With("component", "session_repository_pg"),
		now:    time.Now,
	}
}

func (r *PgSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert session", "error", err, "user_id", session.UserID)
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *PgSessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	query := `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`
	err := r.db.QueryRow(ctx, query, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	if s.Expired(r.now().UTC()) {
		return nil, fmt.Errorf("%w: session expired", domain.ErrNotFound)
	}
	return &s, nil
}

func (r *PgSessionRepository) Delete(ctx context.Context, token string) error {
	// Deleting an unknown token is a no-op; logout is idempotent.
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

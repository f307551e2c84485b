package postgres

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// NewSet builds the full repository set over a shared connection pool.
func NewSet(db *pgxpool.Pool, logger *slog.Logger) repository.Set {
	return repository.Set{
		Users:      NewPgUserRepository(db, logger),
		Projects:   NewPgProjectRepository(db, logger),
		Activities: NewPgActivityRepository(db, logger),
		Credits:    NewPgCreditRepository(db, logger),
		Sessions:   NewPgSessionRepository(db, logger),
		Outbox:     NewPgOutboxRepository(db, logger),
	}
}

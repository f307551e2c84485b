package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// PgCreditRepository stores carbon credits in PostgreSQL. The mint-time
// metadata snapshot is kept as a jsonb document.
type PgCreditRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgCreditRepository(db *pgxpool.Pool, logger *slog.Logger) repository.CreditRepository {
	return &PgCreditRepository{db: db, logger: logger.With("component", "credit_repository_pg")}
}

const creditColumns = `id, project_id, amount, token_id, tx_hash, owner, metadata, created_at, status`

func scanCredit(row pgx.Row) (*domain.Credit, error) {
	var c domain.Credit
	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Amount,
		&c.TokenID,
		&c.TxHash,
		&c.Owner,
		&c.Metadata,
		&c.CreatedAt,
		&c.Status,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgCreditRepository) List(ctx context.Context, filter repository.CreditFilter) ([]domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits`
	conditions := []string{}
	args := []any{}
	if filter.Owner != "" {
		args = append(args, filter.Owner)
		conditions = append(conditions, "owner = $"+strconv.Itoa(len(args)))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		conditions = append(conditions, "project_id = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying credits: %w", err)
	}
	defer rows.Close()

	credits := []domain.Credit{}
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning credit row: %w", err)
		}
		credits = append(credits, *c)
	}
	return credits, rows.Err()
}

func (r *PgCreditRepository) GetByID(ctx context.Context, id string) (*domain.Credit, error) {
	row := r.db.QueryRow(ctx, `SELECT `+creditColumns+` FROM credits WHERE id = $1`, id)
	credit, err := scanCredit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: credit %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("scanning credit by ID %s: %w", id, err)
	}
	return credit, nil
}

func (r *PgCreditRepository) Create(ctx context.Context, credit *domain.Credit) (*domain.Credit, error) {
	if credit.ID == "" {
		credit.ID = uuid.NewString()
	}
	if credit.CreatedAt.IsZero() {
		credit.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO credits (id, project_id, amount, token_id, tx_hash, owner, metadata, created_at, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		credit.ID, credit.ProjectID, credit.Amount, credit.TokenID, credit.TxHash,
		credit.Owner, credit.Metadata, credit.CreatedAt, credit.Status,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert credit", "error", err, "credit_id", credit.ID)
		return nil, fmt.Errorf("inserting credit: %w", err)
	}
	return credit, nil
}

func (r *PgCreditRepository) Update(ctx context.Context, credit *domain.Credit) (*domain.Credit, error) {
	query := `UPDATE credits SET owner = $2, status = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, credit.ID, credit.Owner, credit.Status)
	if err != nil {
		return nil, fmt.Errorf("updating credit %s: %w", credit.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: credit %s", domain.ErrNotFound, credit.ID)
	}
	return credit, nil
}

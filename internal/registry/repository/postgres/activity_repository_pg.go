package postgres

import (
	"context"
	"database/sql"
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

// PgActivityRepository stores activities in PostgreSQL. The measurement
// payload is kept as a jsonb document.
type PgActivityRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgActivityRepository(db *pgxpool.Pool, logger *slog.Logger) repository.ActivityRepository {
	return &PgActivityRepository{db: db, logger: logger.With("component", "activity_repository_pg")}
}

const activityColumns = `id, project_id, user_id, type, data, verified, created_at, verified_by, verified_at, verification_notes, verification_tx`

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	var verifiedBy, verificationNotes, verificationTx sql.NullString
	err := row.Scan(
		&a.ID,
		&a.ProjectID,
		&a.UserID,
		&a.Type,
		&a.Data,
		&a.Verified,
		&a.CreatedAt,
		&verifiedBy,
		&a.VerifiedAt,
		&verificationNotes,
		&verificationTx,
	)
	if err != nil {
		return nil, err
	}
	a.VerifiedBy = verifiedBy.String
	a.VerificationNotes = verificationNotes.String
	a.VerificationTx = verificationTx.String
	return &a, nil
}

func (r *PgActivityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	conditions := []string{}
	args := []any{}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		conditions = append(conditions, "project_id = $"+strconv.Itoa(len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, "user_id = $"+strconv.Itoa(len(args)))
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
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (r *PgActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("scanning activity by ID %s: %w", id, err)
	}
	return activity, nil
}

func (r *PgActivityRepository) Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO activities (id, project_id, user_id, type, data, verified, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		activity.ID, activity.ProjectID, activity.UserID, activity.Type,
		activity.Data, activity.Verified, activity.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert activity", "error", err, "activity_id", activity.ID)
		return nil, fmt.Errorf("inserting activity: %w", err)
	}
	return activity, nil
}

func (r *PgActivityRepository) Update(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	query := `UPDATE activities
	          SET data = $2, verified = $3, verified_by = NULLIF($4, ''), verified_at = $5, verification_notes = NULLIF($6, ''), verification_tx = NULLIF($7, '')
	          WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		activity.ID, activity.Data, activity.Verified, activity.VerifiedBy,
		activity.VerifiedAt, activity.VerificationNotes, activity.VerificationTx,
	)
	if err != nil {
		return nil, fmt.Errorf("updating activity %s: %w", activity.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: activity %s", domain.ErrNotFound, activity.ID)
	}
	return activity, nil
}

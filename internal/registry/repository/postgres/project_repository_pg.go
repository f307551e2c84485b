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

// PgProjectRepository stores projects in PostgreSQL. Location and metrics
// are kept as jsonb documents.
type PgProjectRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgProjectRepository(db *pgxpool.Pool, logger *slog.Logger) repository.ProjectRepository {
	return &PgProjectRepository{db: db, logger: logger.With("component", "project_repository_pg")}
}

const projectColumns = `id, name, description, location, type, status, metrics, created_by, created_at, updated_at, verified`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Location,
		&p.Type,
		&p.Status,
		&p.Metrics,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Verified,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	conditions := []string{}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, "type = $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, "created_by = $"+strconv.Itoa(len(args)))
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
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("scanning project by ID %s: %w", id, err)
	}
	return project, nil
}

func (r *PgProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	now := time.Now().UTC()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}

	query := `INSERT INTO projects (id, name, description, location, type, status, metrics, created_by, created_at, updated_at, verified)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Location,
		project.Type, project.Status, project.Metrics, project.CreatedBy,
		project.CreatedAt, project.UpdatedAt, project.Verified,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert project", "error", err, "project_id", project.ID)
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return project, nil
}

func (r *PgProjectRepository) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	project.UpdatedAt = time.Now().UTC()
	query := `UPDATE projects
	          SET name = $2, description = $3, location = $4, type = $5, status = $6, metrics = $7, updated_at = $8, verified = $9
	          WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Location,
		project.Type, project.Status, project.Metrics, project.UpdatedAt, project.Verified,
	)
	if err != nil {
		return nil, fmt.Errorf("updating project %s: %w", project.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, project.ID)
	}
	return project, nil
}

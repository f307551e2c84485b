package repository

import (
	"context"
	"time"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	Role domain.Role
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status    domain.ProjectStatus
	Type      domain.ProjectType
	CreatedBy string
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	ProjectID string
	UserID    string
}

// CreditFilter narrows credit listings.
type CreditFilter struct {
	Owner     string
	ProjectID string
}

// UserRepository defines the storage operations for users.
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}

// ProjectRepository defines the storage operations for projects.
type ProjectRepository interface {
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) (*domain.Project, error)
}

// ActivityRepository defines the storage operations for activities.
type ActivityRepository interface {
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	Update(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
}

// CreditRepository defines the storage operations for credits.
type CreditRepository interface {
	List(ctx context.Context, filter CreditFilter) ([]domain.Credit, error)
	GetByID(ctx context.Context, id string) (*domain.Credit, error)
	Create(ctx context.Context, credit *domain.Credit) (*domain.Credit, error)
	Update(ctx context.Context, credit *domain.Credit) (*domain.Credit, error)
}

// SessionRepository defines the storage operations for login sessions.
// Get returns domain.ErrNotFound for unknown or expired tokens; expired
// records are not removed (lazy expiry).
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// OutboxRepository defines the storage operations for the event outbox.
type OutboxRepository interface {
	Append(ctx context.Context, msg *domain.OutboxMessage) error
	// AcquirePending returns up to limit pending messages whose
	// NextAttemptAt is not after now.
	AcquirePending(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttemptAt time.Time) error
	MarkDead(ctx context.Context, id string, lastError string) error
}

// Set bundles one repository per collection over a shared backend.
type Set struct {
	Users      UserRepository
	Projects   ProjectRepository
	Activities ActivityRepository
	Credits    CreditRepository
	Sessions   SessionRepository
	Outbox     OutboxRepository
}

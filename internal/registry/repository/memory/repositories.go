package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// Accessors hand out deep copies; callers can never mutate store state
// without going through a write operation.

func cloneUser(u domain.User) domain.User {
	c := u
	c.Permissions = append([]string(nil), u.Permissions...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return c
}

func cloneProject(p domain.Project) domain.Project {
	c := p
	if p.Location.Geofence != nil {
		c.Location.Geofence = make([][]float64, len(p.Location.Geofence))
		for i, pt := range p.Location.Geofence {
			c.Location.Geofence[i] = append([]float64(nil), pt...)
		}
	}
	c.Metrics.Photos = append([]string(nil), p.Metrics.Photos...)
	if p.Metrics.LastMeasurement != nil {
		t := *p.Metrics.LastMeasurement
		c.Metrics.LastMeasurement = &t
	}
	return c
}

func cloneActivity(a domain.Activity) domain.Activity {
	c := a
	if a.Data.Measurements != nil {
		c.Data.Measurements = make(map[string]any, len(a.Data.Measurements))
		for k, v := range a.Data.Measurements {
			c.Data.Measurements[k] = v
		}
	}
	c.Data.Photos = append([]string(nil), a.Data.Photos...)
	if a.VerifiedAt != nil {
		t := *a.VerifiedAt
		c.VerifiedAt = &t
	}
	return c
}

func cloneOutbox(m domain.OutboxMessage) domain.OutboxMessage {
	c := m
	c.Payload = append([]byte(nil), m.Payload...)
	return c
}

// --- users ---

type userRepository struct{ s *Store }

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]domain.User, 0, len(r.s.doc.Users))
	for _, su := range r.s.doc.Users {
		u := su.toDomain()
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, su := range r.s.doc.Users {
		if su.ID == id {
			u := cloneUser(su.toDomain())
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, su := range r.s.doc.Users {
		if su.Email == email {
			u := cloneUser(su.toDomain())
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now().UTC()
	}
	err := r.s.mutate(func(doc *document) error {
		doc.Users = append(doc.Users, toStored(cloneUser(*user)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := r.s.mutate(func(doc *document) error {
		for i, su := range doc.Users {
			if su.ID == user.ID {
				if user.PasswordHash == "" {
					user.PasswordHash = su.PasswordHash
				}
				doc.Users[i] = toStored(cloneUser(*user))
				return nil
			}
		}
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// --- projects ---

type projectRepository struct{ s *Store }

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	projects := make([]domain.Project, 0, len(r.s.doc.Projects))
	for _, p := range r.s.doc.Projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.CreatedBy != "" && p.CreatedBy != filter.CreatedBy {
			continue
		}
		projects = append(projects, cloneProject(p))
	}
	return projects, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.doc.Projects {
		if p.ID == id {
			c := cloneProject(p)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	now := r.s.now().UTC()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	err := r.s.mutate(func(doc *document) error {
		doc.Projects = append(doc.Projects, cloneProject(*project))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	project.UpdatedAt = r.s.now().UTC()
	err := r.s.mutate(func(doc *document) error {
		for i, p := range doc.Projects {
			if p.ID == project.ID {
				doc.Projects[i] = cloneProject(*project)
				return nil
			}
		}
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// --- activities ---

type activityRepository struct{ s *Store }

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	activities := make([]domain.Activity, 0, len(r.s.doc.Activities))
	for _, a := range r.s.doc.Activities {
		if filter.ProjectID != "" && a.ProjectID != filter.ProjectID {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		activities = append(activities, cloneActivity(a))
	}
	return activities, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.doc.Activities {
		if a.ID == id {
			c := cloneActivity(a)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("activity %s: %w", id, domain.ErrNotFound)
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = r.s.now().UTC()
	}
	err := r.s.mutate(func(doc *document) error {
		doc.Activities = append(doc.Activities, cloneActivity(*activity))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *activityRepository) Update(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	err := r.s.mutate(func(doc *document) error {
		for i, a := range doc.Activities {
			if a.ID == activity.ID {
				doc.Activities[i] = cloneActivity(*activity)
				return nil
			}
		}
		return fmt.Errorf("activity %s: %w", activity.ID, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// --- credits ---

type creditRepository struct{ s *Store }

func (r *creditRepository) List(ctx context.Context, filter repository.CreditFilter) ([]domain.Credit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	credits := make([]domain.Credit, 0, len(r.s.doc.Credits))
	for _, c := range r.s.doc.Credits {
		if filter.Owner != "" && c.Owner != filter.Owner {
			continue
		}
		if filter.ProjectID != "" && c.ProjectID != filter.ProjectID {
			continue
		}
		credits = append(credits, c)
	}
	return credits, nil
}

func (r *creditRepository) GetByID(ctx context.Context, id string) (*domain.Credit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.doc.Credits {
		if c.ID == id {
			credit := c
			return &credit, nil
		}
	}
	return nil, fmt.Errorf("credit %s: %w", id, domain.ErrNotFound)
}

func (r *creditRepository) Create(ctx context.Context, credit *domain.Credit) (*domain.Credit, error) {
	if credit.ID == "" {
		credit.ID = uuid.NewString()
	}
	if credit.CreatedAt.IsZero() {
		credit.CreatedAt = r.s.now().UTC()
	}
	err := r.s.mutate(func(doc *document) error {
		doc.Credits = append(doc.Credits, *credit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

func (r *creditRepository) Update(ctx context.Context, credit *domain.Credit) (*domain.Credit, error) {
	err := r.s.mutate(func(doc *document) error {
		for i, c := range doc.Credits {
			if c.ID == credit.ID {
				doc.Credits[i] = *credit
				return nil
			}
		}
		return fmt.Errorf("credit %s: %w", credit.ID, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// --- sessions ---

type sessionRepository struct{ s *Store }

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.s.now().UTC()
	}
	return r.s.mutate(func(doc *document) error {
		doc.Sessions[session.Token] = *session
		return nil
	})
}

// Get applies lazy expiry: an expired session stays in the document but is
// reported as not found.
func (r *sessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.doc.Sessions[token]
	if !ok || session.Expired(r.s.now()) {
		return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
	}
	c := session
	return &c, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.s.mutate(func(doc *document) error {
		delete(doc.Sessions, token)
		return nil
	})
}

// --- outbox ---

type outboxRepository struct{ s *Store }

func (r *outboxRepository) Append(ctx context.Context, msg *domain.OutboxMessage) error {
	now := r.s.now().UTC()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = domain.OutboxStatusPending
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if msg.NextAttemptAt.IsZero() {
		msg.NextAttemptAt = now
	}
	msg.UpdatedAt = now
	return r.s.mutate(func(doc *document) error {
		doc.Outbox = append(doc.Outbox, cloneOutbox(*msg))
		return nil
	})
}

func (r *outboxRepository) AcquirePending(ctx context.Context, now time.Time, limit int) ([]domain.OutboxMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var pending []domain.OutboxMessage
	for _, m := range r.s.doc.Outbox {
		if m.Status != domain.OutboxStatusPending || m.NextAttemptAt.After(now) {
			continue
		}
		pending = append(pending, cloneOutbox(m))
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id string) error {
	return r.updateMessage(id, func(m *domain.OutboxMessage) {
		m.Status = domain.OutboxStatusPublished
		m.LastError = ""
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttemptAt time.Time) error {
	return r.updateMessage(id, func(m *domain.OutboxMessage) {
		m.Attempts = attempts
		m.LastError = lastError
		m.NextAttemptAt = nextAttemptAt
	})
}

func (r *outboxRepository) MarkDead(ctx context.Context, id string, lastError string) error {
	return r.updateMessage(id, func(m *domain.OutboxMessage) {
		m.Status = domain.OutboxStatusDead
		m.LastError = lastError
	})
}

func (r *outboxRepository) updateMessage(id string, fn func(m *domain.OutboxMessage)) error {
	return r.s.mutate(func(doc *document) error {
		for i := range doc.Outbox {
			if doc.Outbox[i].ID == id {
				fn(&doc.Outbox[i])
				doc.Outbox[i].UpdatedAt = r.s.now().UTC()
				return nil
			}
		}
		return fmt.Errorf("outbox message %s: %w", id, domain.ErrNotFound)
	})
}

// Package memory implements the repository interfaces over a single
// in-memory document with a durable JSON snapshot. All collections live in
// one document guarded by one lock, so every read-modify-write cycle is
// atomic with respect to concurrent callers.
package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// DemoPassword is the password of the seeded demo accounts. Stored hashed.
const DemoPassword = "password"

// storedUser carries the password hash into the snapshot; domain.User
// excludes it from JSON so it never leaks through API responses.
type storedUser struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

func toStored(u domain.User) storedUser {
	return storedUser{User: u, PasswordHash: u.PasswordHash}
}

func (su storedUser) toDomain() domain.User {
	u := su.User
	u.PasswordHash = su.PasswordHash
	return u
}

// document is the whole persisted state.
type document struct {
	Users      []storedUser              `json:"users"`
	Projects   []domain.Project          `json:"projects"`
	Activities []domain.Activity         `json:"activities"`
	Credits    []domain.Credit           `json:"credits"`
	Sessions   map[string]domain.Session `json:"sessions"`
	Outbox     []domain.OutboxMessage    `json:"outbox"`
}

func emptyDocument() document {
	return document{
		Users:      []storedUser{},
		Projects:   []domain.Project{},
		Activities: []domain.Activity{},
		Credits:    []domain.Credit{},
		Sessions:   map[string]domain.Session{},
		Outbox:     []domain.OutboxMessage{},
	}
}

// Store holds the document and its snapshot location. An empty path keeps
// the store purely in memory (used by tests).
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
	now    func() time.Time
	doc    document
}

// Open loads the snapshot at path if one exists, otherwise starts from an
// empty document. A store with no users is seeded with the demo dataset;
// seeding happens once and is not re-triggered while data exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
		doc:    emptyDocument(),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &s.doc); err != nil {
				return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
			}
			if s.doc.Sessions == nil {
				s.doc.Sessions = map[string]domain.Session{}
			}
		case os.IsNotExist(err):
			// First run; fall through to seeding.
		default:
			return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
		}
	}

	if len(s.doc.Users) == 0 {
		if err := s.seed(); err != nil {
			return nil, err
		}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		logger.Info("Seeded registry store with demo data", "users", len(s.doc.Users), "projects", len(s.doc.Projects))
	}

	return s, nil
}

// Repositories returns one repository per collection, all backed by this
// store.
func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Users:      &userRepository{s},
		Projects:   &projectRepository{s},
		Activities: &activityRepository{s},
		Credits:    &creditRepository{s},
		Sessions:   &sessionRepository{s},
		Outbox:     &outboxRepository{s},
	}
}

// mutate runs fn under the write lock and persists the document afterwards.
func (s *Store) mutate(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

// persistLocked writes the snapshot. Callers must hold the write lock.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated snapshot.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// seed populates the demo users and projects.
func (s *Store) seed() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	now := s.now().UTC()

	users := []domain.User{
		{
			ID:           "user-1",
			Role:         domain.RoleCommunity,
			Name:         "Priya Sharma",
			Email:        "priya@community.local",
			PasswordHash: string(hash),
			Wallet:       "0x1234567890abcdef1234567890abcdef12345678",
			Permissions:  []string{"create_activity", "view_projects"},
			CreatedAt:    now,
		},
		{
			ID:           "user-2",
			Role:         domain.RoleNGO,
			Name:         "Dr. Raj Patel",
			Email:        "raj@ngo.local",
			PasswordHash: string(hash),
			Wallet:       "0xabcdef1234567890abcdef1234567890abcdef12",
			Permissions:  []string{"create_project", "verify_activity", "view_all"},
			CreatedAt:    now,
		},
		{
			ID:           "user-3",
			Role:         domain.RoleGovernment,
			Name:         "Anita Singh",
			Email:        "anita@gov.local",
			PasswordHash: string(hash),
			Wallet:       "0x5678901234abcdef5678901234abcdef56789012",
			Permissions:  []string{"view_all", "verify_project", "generate_reports"},
			CreatedAt:    now,
		},
	}
	for _, u := range users {
		s.doc.Users = append(s.doc.Users, toStored(u))
	}

	s.doc.Projects = append(s.doc.Projects,
		domain.Project{
			ID:          "project-1",
			Name:        "Sundarbans Mangrove Revival",
			Description: "Restoration of mangrove ecosystems in the Sundarbans delta",
			Location: domain.Location{
				Lat:      21.9497,
				Lng:      89.1833,
				Geofence: [][]float64{{89.1, 21.9}, {89.2, 21.9}, {89.2, 22.0}, {89.1, 22.0}},
			},
			Type:   domain.ProjectTypeMangrove,
			Status: domain.ProjectStatusActive,
			Metrics: domain.ProjectMetrics{
				TreesPlanted: 1247,
				CarbonTons:   89.2,
				AreaRestored: 15.3,
				Photos:       []string{"photo1.jpg", "photo2.jpg"},
			},
			CreatedBy: "user-2",
			CreatedAt: now.Add(-30 * 24 * time.Hour),
			UpdatedAt: now,
			Verified:  true,
		},
		domain.Project{
			ID:          "project-2",
			Name:        "Goa Seagrass Conservation",
			Description: "Protecting and restoring seagrass meadows along Goa coast",
			Location: domain.Location{
				Lat: 15.2993,
				Lng: 74.1240,
			},
			Type:   domain.ProjectTypeSeagrass,
			Status: domain.ProjectStatusPlanning,
			Metrics: domain.ProjectMetrics{
				Photos: []string{},
			},
			CreatedBy: "user-2",
			CreatedAt: now.Add(-7 * 24 * time.Hour),
			UpdatedAt: now,
			Verified:  false,
		},
	)

	return nil
}

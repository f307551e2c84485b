package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_SeedsDemoData(t *testing.T) {
	store, err := Open("", testLogger())
	require.NoError(t, err)

	repos := store.Repositories()
	ctx := context.Background()

	users, err := repos.Users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 3)

	byID := map[string]domain.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	priya, ok := byID["user-1"]
	require.True(t, ok)
	assert.Equal(t, domain.RoleCommunity, priya.Role)
	assert.Equal(t, "Priya Sharma", priya.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(priya.PasswordHash), []byte(DemoPassword)))

	anita, ok := byID["user-3"]
	require.True(t, ok)
	assert.Contains(t, anita.Permissions, "verify_project")
	assert.Contains(t, anita.Permissions, "generate_reports")

	projects, err := repos.Projects.List(ctx, repository.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	sundarbans, err := repos.Projects.GetByID(ctx, "project-1")
	require.NoError(t, err)
	assert.True(t, sundarbans.Verified)
	assert.Equal(t, 1247, sundarbans.Metrics.TreesPlanted)
	assert.NotEmpty(t, sundarbans.Location.Geofence)

	goa, err := repos.Projects.GetByID(ctx, "project-2")
	require.NoError(t, err)
	assert.False(t, goa.Verified)
	assert.Equal(t, domain.ProjectStatusPlanning, goa.Status)
}

func TestOpen_SnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	ctx := context.Background()

	store, err := Open(path, testLogger())
	require.NoError(t, err)

	_, err = store.Repositories().Projects.Create(ctx, &domain.Project{
		Name:      "Kerala Backwater Restoration",
		Type:      domain.ProjectTypeCoastal,
		Status:    domain.ProjectStatusPlanning,
		CreatedBy: "user-2",
	})
	require.NoError(t, err)

	reopened, err := Open(path, testLogger())
	require.NoError(t, err)
	repos := reopened.Repositories()

	projects, err := repos.Projects.List(ctx, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, projects, 3)

	// Seeding must not re-trigger on a populated snapshot.
	users, err := repos.Users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSessionRepository_LazyExpiry(t *testing.T) {
	store, err := Open("", testLogger())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	now := time.Now().UTC()
	expired := &domain.Session{
		Token:     "expired-token",
		UserID:    "user-1",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-25 * time.Hour),
	}
	require.NoError(t, repos.Sessions.Create(ctx, expired))

	_, err = repos.Sessions.Get(ctx, "expired-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Lazy expiry leaves the record in place.
	store.mu.RLock()
	_, retained := store.doc.Sessions["expired-token"]
	store.mu.RUnlock()
	assert.True(t, retained)

	live := &domain.Session{
		Token:     "live-token",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repos.Sessions.Create(ctx, live))
	got, err := repos.Sessions.Get(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	require.NoError(t, repos.Sessions.Delete(ctx, "live-token"))
	_, err = repos.Sessions.Get(ctx, "live-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_UpdateKeepsPasswordHash(t *testing.T) {
	store, err := Open("", testLogger())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	user, err := repos.Users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	originalHash := user.PasswordHash
	require.NotEmpty(t, originalHash)

	user.Name = "Priya S."
	user.PasswordHash = ""
	_, err = repos.Users.Update(ctx, user)
	require.NoError(t, err)

	updated, err := repos.Users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Priya S.", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestRepositories_ReturnCopies(t *testing.T) {
	store, err := Open("", testLogger())
	require.NoError(t, err)
	repos := store.Repositories()
	ctx := context.Background()

	project, err := repos.Projects.GetByID(ctx, "project-1")
	require.NoError(t, err)
	project.Name = "mutated"
	project.Metrics.Photos[0] = "mutated.jpg"

	fresh, err := repos.Projects.GetByID(ctx, "project-1")
	require.NoError(t, err)
	assert.Equal(t, "Sundarbans Mangrove Revival", fresh.Name)
	assert.Equal(t, "photo1.jpg", fresh.Metrics.Photos[0])
}

func TestOutboxRepository_AcquireAndMark(t *testing.T) {
	store, err := Open("", testLogger())
	require.NoError(t, err)
	outbox := store.Repositories().Outbox
	ctx := context.Background()
	now := time.Now().UTC()

	msg := &domain.OutboxMessage{Subject: "project.created", Payload: []byte(`{"projectId":"p1"}`)}
	require.NoError(t, outbox.Append(ctx, msg))
	require.NotEmpty(t, msg.ID)

	pending, err := outbox.AcquirePending(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.OutboxStatusPending, pending[0].Status)

	// A future NextAttemptAt keeps the message out of the batch.
	require.NoError(t, outbox.MarkFailed(ctx, msg.ID, 1, "broker down", now.Add(time.Hour)))
	pending, err = outbox.AcquirePending(ctx, now.Add(time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, outbox.MarkPublished(ctx, msg.ID))
	pending, err = outbox.AcquirePending(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = outbox.MarkPublished(ctx, "missing-id")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

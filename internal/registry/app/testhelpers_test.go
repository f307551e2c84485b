package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluecarbonmrv/registry/internal/registry/repository"
	"github.com/bluecarbonmrv/registry/internal/registry/repository/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRepos opens a seeded in-memory store for service tests.
func newTestRepos(t *testing.T) repository.Set {
	t.Helper()
	store, err := memory.Open("", testLogger())
	require.NoError(t, err)
	return store.Repositories()
}

// Seeded demo actors.
func communityActor() Actor {
	return Actor{
		ID:          "user-1",
		Role:        "community",
		Wallet:      "0x1234567890abcdef1234567890abcdef12345678",
		Permissions: []string{PermCreateActivity, PermViewProjects},
	}
}

func ngoActor() Actor {
	return Actor{
		ID:          "user-2",
		Role:        "ngo",
		Wallet:      "0xabcdef1234567890abcdef1234567890abcdef12",
		Permissions: []string{PermCreateProject, PermVerifyActivity, PermViewAll},
	}
}

func governmentActor() Actor {
	return Actor{
		ID:          "user-3",
		Role:        "government",
		Wallet:      "0x5678901234abcdef5678901234abcdef56789012",
		Permissions: []string{PermViewAll, PermVerifyProject, PermGenerateReports},
	}
}

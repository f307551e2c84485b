package app

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

func newTestCreditService(t *testing.T) (*CreditService, repository.Set) {
	t.Helper()
	repos := newTestRepos(t)
	svc := NewCreditService(repos.Credits, repos.Projects, repos.Users, repos.Outbox, NewChainSimulator(), validator.New(), testLogger())
	return svc, repos
}

func TestCreditService_Mint(t *testing.T) {
	svc, _ := newTestCreditService(t)
	ctx := context.Background()
	actor := ngoActor()

	result, err := svc.Mint(ctx, actor, MintInput{ProjectID: "project-1", Amount: 25.5})
	require.NoError(t, err)

	credit := result.Credit
	assert.NotEmpty(t, credit.ID)
	assert.NotEmpty(t, credit.TokenID)
	assert.Equal(t, actor.Wallet, credit.Owner)
	assert.Equal(t, domain.CreditStatusMinted, credit.Status)
	assert.Equal(t, 25.5, credit.Amount)

	// Metadata is a snapshot of the project at mint time.
	assert.Equal(t, "project-1", credit.Metadata.ProjectID)
	assert.Equal(t, "Sundarbans Mangrove Revival", credit.Metadata.ProjectName)
	assert.Equal(t, Methodology, credit.Metadata.Methodology)
	assert.Equal(t, strconv.Itoa(time.Now().UTC().Year()), credit.Metadata.VintagePeriod)

	// Receipt mirrors the credit's transaction hash.
	assert.Equal(t, credit.TxHash, result.Transaction.TxHash)
	assert.Equal(t, ZeroAddress, result.Transaction.From)
	assert.Equal(t, actor.Wallet, result.Transaction.To)
}

func TestCreditService_Mint_Failures(t *testing.T) {
	svc, repos := newTestCreditService(t)
	ctx := context.Background()

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Mint(ctx, ngoActor(), MintInput{ProjectID: "project-404", Amount: 10})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := svc.Mint(ctx, Actor{}, MintInput{ProjectID: "project-1", Amount: 10})
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.Mint(ctx, ngoActor(), MintInput{ProjectID: "project-1", Amount: 0})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	// None of the failed mints left a credit behind.
	credits, err := repos.Credits.List(ctx, repository.CreditFilter{})
	require.NoError(t, err)
	assert.Empty(t, credits)
}

func TestCreditService_Portfolio(t *testing.T) {
	svc, _ := newTestCreditService(t)
	ctx := context.Background()
	actor := ngoActor()

	_, err := svc.Mint(ctx, actor, MintInput{ProjectID: "project-1", Amount: 10})
	require.NoError(t, err)
	_, err = svc.Mint(ctx, actor, MintInput{ProjectID: "project-1", Amount: 20})
	require.NoError(t, err)

	portfolio, err := svc.Portfolio(ctx, actor.Wallet)
	require.NoError(t, err)
	assert.Len(t, portfolio, 2)

	other, err := svc.Portfolio(ctx, "0xsomeoneelse")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreditService_Transfer(t *testing.T) {
	svc, repos := newTestCreditService(t)
	ctx := context.Background()
	owner := ngoActor()

	result, err := svc.Mint(ctx, owner, MintInput{ProjectID: "project-1", Amount: 10})
	require.NoError(t, err)
	creditID := result.Credit.ID

	t.Run("non-owner denied", func(t *testing.T) {
		_, err := svc.Transfer(ctx, communityActor(), creditID, "0xdest", 10)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("owner transfers", func(t *testing.T) {
		receipt, err := svc.Transfer(ctx, owner, creditID, "0xdest", 10)
		require.NoError(t, err)
		assert.Equal(t, owner.Wallet, receipt.From)
		assert.Equal(t, "0xdest", receipt.To)

		credit, err := repos.Credits.GetByID(ctx, creditID)
		require.NoError(t, err)
		assert.Equal(t, domain.CreditStatusTransferred, credit.Status)
		assert.Equal(t, "0xdest", credit.Owner)
	})

	t.Run("transferred credit cannot transfer again", func(t *testing.T) {
		holder := Actor{ID: "user-9", Wallet: "0xdest"}
		_, err := svc.Transfer(ctx, holder, creditID, "0xelsewhere", 10)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCreditService_Retire(t *testing.T) {
	svc, repos := newTestCreditService(t)
	ctx := context.Background()
	owner := ngoActor()

	result, err := svc.Mint(ctx, owner, MintInput{ProjectID: "project-1", Amount: 5})
	require.NoError(t, err)
	creditID := result.Credit.ID

	_, err = svc.Retire(ctx, communityActor(), creditID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	retired, err := svc.Retire(ctx, owner, creditID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusRetired, retired.Status)

	// Retirement is terminal: no further transitions.
	_, err = svc.Retire(ctx, owner, creditID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Transfer(ctx, owner, creditID, "0xdest", 5)
	assert.ErrorIs(t, err, domain.ErrValidation)

	credit, err := repos.Credits.GetByID(ctx, creditID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusRetired, credit.Status)
}

func TestCreditStatus_Transitions(t *testing.T) {
	assert.True(t, domain.CreditStatusMinted.CanTransitionTo(domain.CreditStatusTransferred))
	assert.True(t, domain.CreditStatusMinted.CanTransitionTo(domain.CreditStatusRetired))
	assert.True(t, domain.CreditStatusTransferred.CanTransitionTo(domain.CreditStatusRetired))
	assert.False(t, domain.CreditStatusTransferred.CanTransitionTo(domain.CreditStatusMinted))
	assert.False(t, domain.CreditStatusRetired.CanTransitionTo(domain.CreditStatusMinted))
	assert.False(t, domain.CreditStatusRetired.CanTransitionTo(domain.CreditStatusTransferred))
}

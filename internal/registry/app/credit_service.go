package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// Methodology recorded on credit metadata at mint time.
const Methodology = "VCS-Verified Carbon Standard"

// MintInput is the validated payload for minting credits.
type MintInput struct {
	ProjectID string  `json:"projectId" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// MintResult pairs the created credit with its simulated receipt.
type MintResult struct {
	Credit      *domain.Credit          `json:"credit"`
	Transaction domain.ChainTransaction `json:"transaction"`
}

// CreditService implements the carbon-credit ledger operations.
type CreditService struct {
	credits  repository.CreditRepository
	projects repository.ProjectRepository
	users    repository.UserRepository
	outbox   repository.OutboxRepository
	chain    *ChainSimulator
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewCreditService creates a CreditService.
func NewCreditService(
	credits repository.CreditRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	chain *ChainSimulator,
	validate *validator.Validate,
	logger *slog.Logger,
) *CreditService {
	return &CreditService{
		credits:  credits,
		projects: projects,
		users:    users,
		outbox:   outbox,
		chain:    chain,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Mint issues credits against a project to the actor's wallet, snapshotting
// project metadata at mint time and producing a simulated receipt.
func (s *CreditService) Mint(ctx context.Context, actor Actor, in MintInput) (*MintResult, error) {
	if err := s.validate.Struct(in); err != nil {
		ledgerOperationsCounter.WithLabelValues("mint", "error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("mint", "error").Inc()
		return nil, err
	}
	if !actor.Authenticated() {
		ledgerOperationsCounter.WithLabelValues("mint", "error").Inc()
		return nil, domain.ErrAuthRequired
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("mint", "error").Inc()
		return nil, err
	}

	credit := &domain.Credit{
		ProjectID: in.ProjectID,
		Amount:    in.Amount,
		TokenID:   uuid.NewString(),
		TxHash:    s.chain.TxHash(),
		Owner:     user.Wallet,
		Metadata: domain.CreditMetadata{
			ProjectID:     project.ID,
			ProjectName:   project.Name,
			VintagePeriod: strconv.Itoa(s.now().UTC().Year()),
			Methodology:   Methodology,
		},
		Status: domain.CreditStatusMinted,
	}
	created, err := s.credits.Create(ctx, credit)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("mint", "error").Inc()
		return nil, err
	}

	transaction := s.chain.MintReceipt(user.Wallet, in.Amount)
	transaction.TxHash = created.TxHash

	appendEvent(ctx, s.outbox, s.logger, domain.EventCreditMinted, map[string]any{
		"creditId":  created.ID,
		"projectId": created.ProjectID,
		"owner":     created.Owner,
		"amount":    created.Amount,
		"txHash":    created.TxHash,
	})
	ledgerOperationsCounter.WithLabelValues("mint", "success").Inc()
	return &MintResult{Credit: created, Transaction: transaction}, nil
}

// Portfolio returns the credits owned by a wallet.
func (s *CreditService) Portfolio(ctx context.Context, wallet string) ([]domain.Credit, error) {
	return s.credits.List(ctx, repository.CreditFilter{Owner: wallet})
}

// Transfer moves a credit to another wallet. Only the current owner may
// transfer, and only a minted credit; the status moves forward to
// transferred and never back.
func (s *CreditService) Transfer(ctx context.Context, actor Actor, creditID, toWallet string, amount float64) (*domain.ChainTransaction, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	credit, err := s.credits.GetByID(ctx, creditID)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("transfer", "error").Inc()
		return nil, err
	}
	if credit.Owner != actor.Wallet {
		ledgerOperationsCounter.WithLabelValues("transfer", "error").Inc()
		return nil, domain.ErrPermissionDenied
	}
	if !credit.Status.CanTransitionTo(domain.CreditStatusTransferred) {
		ledgerOperationsCounter.WithLabelValues("transfer", "error").Inc()
		return nil, fmt.Errorf("%w: credit in status %s cannot be transferred", domain.ErrValidation, credit.Status)
	}

	credit.Status = domain.CreditStatusTransferred
	credit.Owner = toWallet
	if _, err := s.credits.Update(ctx, credit); err != nil {
		ledgerOperationsCounter.WithLabelValues("transfer", "error").Inc()
		return nil, err
	}

	transaction := s.chain.TransferReceipt(actor.Wallet, toWallet, amount)
	appendEvent(ctx, s.outbox, s.logger, domain.EventCreditTransferred, map[string]any{
		"creditId": credit.ID,
		"from":     actor.Wallet,
		"to":       toWallet,
		"amount":   amount,
		"txHash":   transaction.TxHash,
	})
	ledgerOperationsCounter.WithLabelValues("transfer", "success").Inc()
	return &transaction, nil
}

// Retire permanently takes a credit out of circulation. Only the owner may
// retire; a retired credit never transitions again.
func (s *CreditService) Retire(ctx context.Context, actor Actor, creditID string) (*domain.Credit, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	credit, err := s.credits.GetByID(ctx, creditID)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("retire", "error").Inc()
		return nil, err
	}
	if credit.Owner != actor.Wallet {
		ledgerOperationsCounter.WithLabelValues("retire", "error").Inc()
		return nil, domain.ErrPermissionDenied
	}
	if !credit.Status.CanTransitionTo(domain.CreditStatusRetired) {
		ledgerOperationsCounter.WithLabelValues("retire", "error").Inc()
		return nil, fmt.Errorf("%w: credit in status %s cannot be retired", domain.ErrValidation, credit.Status)
	}

	credit.Status = domain.CreditStatusRetired
	updated, err := s.credits.Update(ctx, credit)
	if err != nil {
		ledgerOperationsCounter.WithLabelValues("retire", "error").Inc()
		return nil, err
	}

	appendEvent(ctx, s.outbox, s.logger, domain.EventCreditRetired, map[string]string{
		"creditId": updated.ID,
		"owner":    updated.Owner,
	})
	ledgerOperationsCounter.WithLabelValues("retire", "success").Inc()
	return updated, nil
}

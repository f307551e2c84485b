package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// ActivityCreateInput is the validated payload for recording an activity.
type ActivityCreateInput struct {
	ProjectID string              `json:"projectId" validate:"required"`
	Type      domain.ActivityType `json:"type" validate:"required,oneof=planting monitoring measurement verification"`
	Data      domain.ActivityData `json:"data" validate:"required"`
}

// VerificationLogEntry is one row of a project's verification history.
type VerificationLogEntry struct {
	ID         string     `json:"id"`
	ActivityID string     `json:"activityId"`
	VerifiedBy string     `json:"verifiedBy"`
	VerifiedAt *time.Time `json:"verifiedAt"`
	TxHash     string     `json:"txHash"`
	Notes      string     `json:"notes"`
}

// ActivityService implements activity recording and verification.
type ActivityService struct {
	activities repository.ActivityRepository
	projects   repository.ProjectRepository
	outbox     repository.OutboxRepository
	chain      *ChainSimulator
	validate   *validator.Validate
	logger     *slog.Logger
	now        func() time.Time
}

// NewActivityService creates an ActivityService.
func NewActivityService(
	activities repository.ActivityRepository,
	projects repository.ProjectRepository,
	outbox repository.OutboxRepository,
	chain *ChainSimulator,
	validate *validator.Validate,
	logger *slog.Logger,
) *ActivityService {
	return &ActivityService{
		activities: activities,
		projects:   projects,
		outbox:     outbox,
		chain:      chain,
		validate:   validate,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns activities matching the filter.
func (s *ActivityService) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	return s.activities.List(ctx, filter)
}

// Create validates the payload and records a new unverified activity for
// the actor against an existing project.
func (s *ActivityService) Create(ctx context.Context, actor Actor, in ActivityCreateInput) (*domain.Activity, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		ProjectID: in.ProjectID,
		UserID:    actor.ID,
		Type:      in.Type,
		Data:      in.Data,
		Verified:  false,
	}
	created, err := s.activities.Create(ctx, activity)
	if err != nil {
		return nil, err
	}

	appendEvent(ctx, s.outbox, s.logger, domain.EventActivityRecorded, map[string]string{
		"activityId": created.ID,
		"projectId":  created.ProjectID,
		"userId":     created.UserID,
		"type":       string(created.Type),
	})
	return created, nil
}

// Approve verifies an activity exactly once, recording the verifier and
// time plus a simulated chain receipt. A second approval is rejected.
func (s *ActivityService) Approve(ctx context.Context, actor Actor, activityID, notes string) (*domain.Activity, *domain.ChainTransaction, error) {
	if !actor.Can(PermVerifyActivity) {
		return nil, nil, domain.ErrPermissionDenied
	}
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	if activity.Verified {
		return nil, nil, fmt.Errorf("%w: activity already verified", domain.ErrValidation)
	}

	receipt := s.chain.VerificationReceipt(actor.Wallet)
	verifiedAt := s.now().UTC()
	activity.Verified = true
	activity.VerifiedBy = actor.ID
	activity.VerifiedAt = &verifiedAt
	activity.VerificationNotes = notes
	activity.VerificationTx = receipt.TxHash

	updated, err := s.activities.Update(ctx, activity)
	if err != nil {
		return nil, nil, err
	}

	appendEvent(ctx, s.outbox, s.logger, domain.EventActivityVerified, map[string]string{
		"activityId": updated.ID,
		"projectId":  updated.ProjectID,
		"verifiedBy": actor.ID,
		"txHash":     receipt.TxHash,
	})
	return updated, &receipt, nil
}

// VerificationLog returns the verified activities of a project reshaped as
// log entries.
func (s *ActivityService) VerificationLog(ctx context.Context, projectID string) ([]VerificationLogEntry, error) {
	activities, err := s.activities.List(ctx, repository.ActivityFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	entries := make([]VerificationLogEntry, 0)
	for _, a := range activities {
		if !a.Verified {
			continue
		}
		entries = append(entries, VerificationLogEntry{
			ID:         a.ID,
			ActivityID: a.ID,
			VerifiedBy: a.VerifiedBy,
			VerifiedAt: a.VerifiedAt,
			TxHash:     a.VerificationTx,
			Notes:      a.VerificationNotes,
		})
	}
	return entries, nil
}

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

// ProjectCreateInput is the validated payload for creating a project.
type ProjectCreateInput struct {
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Location    domain.Location       `json:"location" validate:"required"`
	Type        domain.ProjectType    `json:"type" validate:"required,oneof=mangrove seagrass coral coastal"`
	Status      domain.ProjectStatus  `json:"status" validate:"required,oneof=planning active completed suspended"`
	Metrics     domain.ProjectMetrics `json:"metrics"`
}

// ProjectUpdateInput is a partial update; nil fields are left unchanged.
type ProjectUpdateInput struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Status      *domain.ProjectStatus  `json:"status,omitempty" validate:"omitempty,oneof=planning active completed suspended"`
	Metrics     *domain.ProjectMetrics `json:"metrics,omitempty"`
}

// ProjectService implements the project collection operations.
type ProjectService struct {
	projects repository.ProjectRepository
	outbox   repository.OutboxRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewProjectService creates a ProjectService.
func NewProjectService(projects repository.ProjectRepository, outbox repository.OutboxRepository, validate *validator.Validate, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		outbox:   outbox,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns projects matching the filter.
func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	return s.projects.List(ctx, filter)
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// Create validates the payload and stores a new project owned by the actor.
// Projects always start unverified.
func (s *ProjectService) Create(ctx context.Context, actor Actor, in ProjectCreateInput) (*domain.Project, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	metrics := in.Metrics
	if metrics.Photos == nil {
		metrics.Photos = []string{}
	}
	project := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Status:      in.Status,
		Metrics:     metrics,
		CreatedBy:   actor.ID,
		Verified:    false,
	}
	created, err := s.projects.Create(ctx, project)
	if err != nil {
		return nil, err
	}

	appendEvent(ctx, s.outbox, s.logger, domain.EventProjectCreated, map[string]string{
		"projectId": created.ID,
		"name":      created.Name,
		"createdBy": created.CreatedBy,
	})
	return created, nil
}

// Update applies a partial update to a project.
func (s *ProjectService) Update(ctx context.Context, actor Actor, id string, in ProjectUpdateInput) (*domain.Project, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrAuthRequired
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if in.Metrics != nil {
		project.Metrics = *in.Metrics
	}
	return s.projects.Update(ctx, project)
}

// Verify flips the verified flag. Only actors holding the verify_project
// permission may call it; the flag never flips back.
func (s *ProjectService) Verify(ctx context.Context, actor Actor, id string) (*domain.Project, error) {
	if !actor.Can(PermVerifyProject) {
		return nil, domain.ErrPermissionDenied
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Verified {
		return project, nil
	}
	project.Verified = true
	updated, err := s.projects.Update(ctx, project)
	if err != nil {
		return nil, err
	}

	appendEvent(ctx, s.outbox, s.logger, domain.EventProjectVerified, map[string]string{
		"projectId":  updated.ID,
		"verifiedBy": actor.ID,
	})
	return updated, nil
}

// GeoJSON types for the map endpoint.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// GeoJSON reshapes the project list into a FeatureCollection of Point
// features for the map view.
func (s *ProjectService) GeoJSON(ctx context.Context) (*FeatureCollection, error) {
	projects, err := s.projects.List(ctx, repository.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(projects))}
	for _, p := range projects {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			ID:   p.ID,
			Properties: map[string]any{
				"id":           p.ID,
				"name":         p.Name,
				"type":         p.Type,
				"status":       p.Status,
				"treesPlanted": p.Metrics.TreesPlanted,
				"carbonTons":   p.Metrics.CarbonTons,
			},
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{p.Location.Lng, p.Location.Lat},
			},
		})
	}
	return fc, nil
}

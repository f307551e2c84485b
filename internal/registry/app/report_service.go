package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
	"github.com/bluecarbonmrv/registry/internal/registry/repository"
)

// ExportInput selects what to export. Type "csv" returns inline CSV data;
// "pdf" returns a document reference.
type ExportInput struct {
	Type      string `json:"type" validate:"required,oneof=csv pdf"`
	ProjectID string `json:"projectId,omitempty"`
	Format    string `json:"format,omitempty"`
}

// ReportExport is the result of an export: inline CSV or a file reference.
type ReportExport struct {
	CSV      string `json:"csv,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename"`
}

// ReportService generates project exports. PDF generation is out of scope;
// the pdf type returns a reference only.
type ReportService struct {
	projects repository.ProjectRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportService creates a ReportService.
func NewReportService(projects repository.ProjectRepository, validate *validator.Validate, logger *slog.Logger) *ReportService {
	return &ReportService{projects: projects, validate: validate, logger: logger, now: time.Now}
}

// Export produces a report for actors holding the generate_reports
// permission.
func (s *ReportService) Export(ctx context.Context, actor Actor, in ExportInput) (*ReportExport, error) {
	if !actor.Can(PermGenerateReports) {
		return nil, domain.ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now().UTC()
	if in.Type == "pdf" {
		scope := in.ProjectID
		if scope == "" {
			scope = "all"
		}
		return &ReportExport{
			URL:      "/reports/project-report.pdf",
			Filename: fmt.Sprintf("project-report-%s-%d.pdf", scope, now.UnixMilli()),
		}, nil
	}

	projects, err := s.projectsInScope(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{"Project Name", "Trees Planted", "Carbon Sequestered", "Status"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header failed: %w", err)
	}
	for _, p := range projects {
		row := []string{
			p.Name,
			strconv.Itoa(p.Metrics.TreesPlanted),
			strconv.FormatFloat(p.Metrics.CarbonTons, 'f', -1, 64),
			string(p.Status),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row failed: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("csv writer error: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported project data to CSV", "projects", len(projects), "requestedBy", actor.ID)
	return &ReportExport{
		CSV:      buf.String(),
		Filename: fmt.Sprintf("project-data-%d.csv", now.UnixMilli()),
	}, nil
}

func (s *ReportService) projectsInScope(ctx context.Context, projectID string) ([]domain.Project, error) {
	if projectID == "" {
		return s.projects.List(ctx, repository.ProjectFilter{})
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return []domain.Project{*project}, nil
}

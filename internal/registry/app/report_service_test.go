package app

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbonmrv/registry/internal/registry/domain"
)

func newTestReportService(t *testing.T) *ReportService {
	t.Helper()
	repos := newTestRepos(t)
	return NewReportService(repos.Projects, validator.New(), testLogger())
}

func TestReportService_ExportCSV(t *testing.T) {
	svc := newTestReportService(t)

	export, err := svc.Export(context.Background(), governmentActor(), ExportInput{Type: "csv"})
	require.NoError(t, err)
	assert.Empty(t, export.URL)
	assert.True(t, strings.HasPrefix(export.Filename, "project-data-"))
	assert.True(t, strings.HasSuffix(export.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(export.CSV), "\n")
	require.Len(t, lines, 3) // header + 2 seeded projects
	assert.Equal(t, "Project Name,Trees Planted,Carbon Sequestered,Status", lines[0])
	assert.Contains(t, export.CSV, "Sundarbans Mangrove Revival,1247,89.2,active")
	assert.Contains(t, export.CSV, "Goa Seagrass Conservation,0,0,planning")
}

func TestReportService_ExportCSV_SingleProject(t *testing.T) {
	svc := newTestReportService(t)

	export, err := svc.Export(context.Background(), governmentActor(), ExportInput{Type: "csv", ProjectID: "project-1"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(export.CSV), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Sundarbans Mangrove Revival")

	_, err = svc.Export(context.Background(), governmentActor(), ExportInput{Type: "csv", ProjectID: "project-404"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportService_ExportPDF(t *testing.T) {
	svc := newTestReportService(t)

	export, err := svc.Export(context.Background(), governmentActor(), ExportInput{Type: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "/reports/project-report.pdf", export.URL)
	assert.True(t, strings.HasPrefix(export.Filename, "project-report-all-"))
	assert.Empty(t, export.CSV)
}

func TestReportService_Export_PermissionDenied(t *testing.T) {
	svc := newTestReportService(t)

	for _, actor := range []Actor{communityActor(), ngoActor(), {}} {
		_, err := svc.Export(context.Background(), actor, ExportInput{Type: "csv"})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	}
}

func TestReportService_Export_InvalidType(t *testing.T) {
	svc := newTestReportService(t)

	_, err := svc.Export(context.Background(), governmentActor(), ExportInput{Type: "xlsx"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

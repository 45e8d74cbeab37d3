package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

type listerStub struct {
	items  []models.Grievance
	filter models.GrievanceFilter
}

func (l *listerStub) ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error) {
	l.filter = filter
	return l.items, nil
}

func newExportServiceForTest(items ...models.Grievance) (*ExportService, *listerStub) {
	lister := &listerStub{items: items}
	svc := NewExportService(lister, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, lister
}

func exportedGrievance(hide bool) models.Grievance {
	name, reg, cat := "Asha Rao", "REG-7", "Discipline & Safety"
	priority := models.PriorityHigh
	return models.Grievance{
		ID:                 "g-1",
		Title:              "Harassment, in hostel",
		Status:             models.StatusInProgress,
		Priority:           &priority,
		StudentName:        &name,
		RegistrationNumber: &reg,
		CategoryName:       &cat,
		HideIdentity:       hide,
		CreatedAt:          time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:          time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestExportGrievancesCSV(t *testing.T) {
	svc, lister := newExportServiceForTest(exportedGrievance(false))

	result, err := svc.ExportGrievances(context.Background(), adminCaller, dto.GrievanceQuery{Status: "in_progress"}, "")
	require.NoError(t, err)
	assert.Equal(t, "grievances_20250301_093000.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, 1, result.Rows)
	require.NotNil(t, lister.filter.Status)
	assert.Equal(t, models.StatusInProgress, *lister.filter.Status)

	records, err := csv.NewReader(strings.NewReader(string(result.Payload))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, "Harassment, in hostel", records[1][1])
	assert.Equal(t, "In Progress", records[1][2])
	assert.Equal(t, "HIGH", records[1][3])
	assert.Equal(t, "Asha Rao", records[1][4])
}

func TestExportGrievancesMasksForFaculty(t *testing.T) {
	svc, _ := newExportServiceForTest(exportedGrievance(true))

	result, err := svc.ExportGrievances(context.Background(), facultyCaller, dto.GrievanceQuery{}, "csv")
	require.NoError(t, err)
	assert.Contains(t, string(result.Payload), MaskedIdentity)
	assert.NotContains(t, string(result.Payload), "Asha Rao")
	assert.NotContains(t, string(result.Payload), "REG-7")
}

func TestExportGrievancesPDF(t *testing.T) {
	svc, _ := newExportServiceForTest(exportedGrievance(false))

	result, err := svc.ExportGrievances(context.Background(), adminCaller, dto.GrievanceQuery{}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
}

func TestExportGrievancesRejections(t *testing.T) {
	svc, _ := newExportServiceForTest()
	ctx := context.Background()

	_, err := svc.ExportGrievances(ctx, ownerCaller, dto.GrievanceQuery{}, "csv")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ExportGrievances(ctx, adminCaller, dto.GrievanceQuery{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ExportGrievances(ctx, adminCaller, dto.GrievanceQuery{Status: "closed"}, "csv")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/college-icrs/icrs-api/internal/dto"
	"github.com/college-icrs/icrs-api/internal/models"
	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
	"github.com/college-icrs/icrs-api/pkg/export"
)

type grievanceLister interface {
	ListAll(ctx context.Context, filter models.GrievanceFilter) ([]models.Grievance, error)
}

// ExportResult is a rendered export ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders grievance listings as CSV or PDF.
type ExportService struct {
	grievances grievanceLister
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(grievances grievanceLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{grievances: grievances, logger: logger, now: time.Now}
}

var exportHeaders = []string{"ID", "Title", "Status", "Priority", "Student", "Registration No.", "Category", "Subcategory", "Assignee", "Created At", "Updated At"}

// ExportGrievances renders every grievance matching the query. Identity masking applies as in reads.
func (s *ExportService) ExportGrievances(ctx context.Context, caller models.Caller, query dto.GrievanceQuery, rawFormat string) (*ExportResult, error) {
	if !CanViewReports(caller) {
		return nil, forbidden("only faculty or admin can export grievances")
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	filter, err := filterFromQuery(query)
	if err != nil {
		return nil, err
	}

	items, err := s.grievances.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grievances for export")
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		g := MaskIdentity(caller, item)
		rows = append(rows, map[string]string{
			"ID":               g.ID,
			"Title":            g.Title,
			"Status":           g.Status.Label(),
			"Priority":         priorityText(g.Priority),
			"Student":          deref(g.StudentName),
			"Registration No.": deref(g.RegistrationNumber),
			"Category":         deref(g.CategoryName),
			"Subcategory":      deref(g.SubcategoryName),
			"Assignee":         deref(g.AssigneeName),
			"Created At":       g.CreatedAt.UTC().Format(time.RFC3339),
			"Updated At":       g.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	generated := s.now().UTC()
	title := "Grievance Report"
	if filter.Status != nil {
		title = fmt.Sprintf("Grievance Report - %s", filter.Status.Label())
	}
	payload, err := export.Render(format, export.Dataset{
		Title:   fmt.Sprintf("%s (%s)", title, generated.Format("2006-01-02 15:04 MST")),
		Headers: exportHeaders,
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Info("grievances exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
		zap.String("actor_id", caller.ID),
	)
	return &ExportResult{
		Filename:    fmt.Sprintf("grievances_%s.%s", generated.Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Payload:     payload,
		Rows:        len(rows),
	}, nil
}

func priorityText(p *models.GrievancePriority) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

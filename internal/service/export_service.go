package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
	"github.com/Likhith025/timetablegen/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportService renders the latest generation result as downloadable
// per-section grids.
type ExportService struct {
	timetables latestTimetableReader
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	title      string
	logger     *zap.Logger
}

// NewExportService wires export dependencies.
func NewExportService(timetables latestTimetableReader, title string, logger *zap.Logger) *ExportService {
	if title == "" {
		title = "Weekly Timetable"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		title:      title,
		logger:     logger,
	}
}

// ExportResult carries rendered bytes plus HTTP metadata.
type ExportResult struct {
	ContentType string
	Filename    string
	Payload     []byte
}

// Export renders the latest timetable in the requested format.
func (s *ExportService) Export(ctx context.Context, timetableID string, format ExportFormat) (*ExportResult, error) {
	if timetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}

	latest, err := s.timetables.Latest(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if latest.Result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no generation result stored for timetable")
	}

	grids := buildGrids(latest.Result)

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(grids)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return &ExportResult{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("timetable-%s-v%d.csv", timetableID, latest.Version),
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(grids, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return &ExportResult{
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("timetable-%s-v%d.pdf", timetableID, latest.Version),
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// buildGrids lays each section out as days-by-slots with cells of the form
// "Subject / Faculty / Room".
func buildGrids(result *models.GenerationResult) []export.Grid {
	sections := make([]string, 0, len(result.Schedules))
	for section := range result.Schedules {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	slotSet := map[string]struct{}{}
	for _, days := range result.Schedules {
		for _, entries := range days {
			for _, entry := range entries {
				slotSet[entry.TimeSlot] = struct{}{}
			}
		}
	}
	slots := make([]string, 0, len(slotSet))
	for slot := range slotSet {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	headers := append([]string{"Day"}, slots...)

	grids := make([]export.Grid, 0, len(sections))
	for _, section := range sections {
		rows := make([]map[string]string, 0, len(models.Weekdays))
		for _, day := range models.Weekdays {
			row := map[string]string{"Day": day}
			for _, entry := range result.Schedules[section][day] {
				row[entry.TimeSlot] = formatCell(entry)
			}
			rows = append(rows, row)
		}
		grids = append(grids, export.Grid{
			Title:   fmt.Sprintf("Class %s", section),
			Headers: headers,
			Rows:    rows,
		})
	}
	return grids
}

func formatCell(entry models.ScheduleEntry) string {
	if entry.Subject == models.FreePeriod {
		return models.FreePeriod
	}
	parts := []string{entry.Subject}
	if entry.Faculty != "" {
		parts = append(parts, entry.Faculty)
	}
	if entry.Room != "" {
		parts = append(parts, entry.Room)
	}
	return strings.Join(parts, " / ")
}

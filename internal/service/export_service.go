package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type timetableViews interface {
	Week(ctx context.Context, date time.Time, filter timetable.OccurrenceFilter) (*WeekView, error)
	Conflicts(ctx context.Context) (*ConflictReport, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var (
	weekHeaders     = []string{"Date", "Day", "Start", "End", "Course", "Kind", "Room", "Instructor", "Assistants", "Note", "Conflicts"}
	conflictHeaders = []string{"Lecture", "Course", "Day", "Start", "End", "Room", "Kind", "With", "Message"}
)

// ExportService renders timetable views into CSV, PDF or XLSX files.
type ExportService struct {
	views  timetableViews
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(views timetableViews, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{views: views, logger: logger}
}

// Week renders the week containing date.
func (s *ExportService) Week(ctx context.Context, date time.Time, format export.Format, filter timetable.OccurrenceFilter) (*ExportFile, error) {
	week, err := s.views.Week(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Title: fmt.Sprintf("Timetable %s to %s", week.Start, week.End), Headers: weekHeaders}
	for _, day := range week.Days {
		for _, o := range day.Occurrences {
			note := ""
			if o.Override && o.OriginalDate != nil {
				note = "rescheduled from " + o.OriginalDate.Format(time.DateOnly)
				if o.Reason != "" {
					note += ": " + o.Reason
				}
			}
			data.Rows = append(data.Rows, map[string]string{
				"Date":       day.Date,
				"Day":        weekdayName(day.Weekday),
				"Start":      o.StartTime.String(),
				"End":        o.EndTime.String(),
				"Course":     o.CourseCode,
				"Kind":       string(o.Kind),
				"Room":       o.RoomName,
				"Instructor": o.InstructorName,
				"Assistants": strings.Join(o.AssistantNames, ", "),
				"Note":       note,
				"Conflicts":  strings.Join(o.Conflicts, "; "),
			})
		}
	}
	return s.render(data, format, "timetable-"+week.Start)
}

// Conflicts renders the conflict report of the recurring timetable.
func (s *ExportService) Conflicts(ctx context.Context, format export.Format) (*ExportFile, error) {
	report, err := s.views.Conflicts(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Title: fmt.Sprintf("Conflicts %s", report.TakenAt.UTC().Format(time.DateOnly)), Headers: conflictHeaders}
	for _, l := range report.Lectures {
		for _, c := range l.Conflicts {
			data.Rows = append(data.Rows, map[string]string{
				"Lecture": l.LectureID,
				"Course":  l.CourseCode,
				"Day":     weekdayName(l.Weekday),
				"Start":   l.StartTime.String(),
				"End":     l.EndTime.String(),
				"Room":    l.RoomName,
				"Kind":    string(c.Kind),
				"With":    c.CourseCode,
				"Message": c.Message,
			})
		}
	}
	return s.render(data, format, "conflicts-"+report.TakenAt.UTC().Format("20060102-1504"))
}

func (s *ExportService) render(data export.Dataset, format export.Format, base string) (*ExportFile, error) {
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("export rendered", zap.String("format", string(format)), zap.Int("rows", len(data.Rows)), zap.Int("bytes", len(body)))
	return &ExportFile{Filename: format.Filename(base), ContentType: format.ContentType(), Body: body}, nil
}

func weekdayName(d int) string {
	if d < 0 || d >= len(weekdayNames) {
		return fmt.Sprint(d)
	}
	return weekdayNames[d]
}

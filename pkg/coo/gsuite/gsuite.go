// Package gsuite integrates Google Calendar and Google Sheets through
// a service account.
package gsuite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrNotConfigured is returned when no service account credentials are
// available.
var ErrNotConfigured = errors.New("google workspace not configured")

// ErrNoFreeSlot is returned when the scheduling horizon has no opening.
var ErrNoFreeSlot = errors.New("no free slot in scheduling horizon")

// Config holds the workspace integration settings.
type Config struct {
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
	SheetID         string `yaml:"sheet_id"`
	SheetRange      string `yaml:"sheet_range"`
}

// Service wraps the Calendar and Sheets APIs.
type Service struct {
	cal    *calendar.Service
	sheets *sheets.Service
	config Config
	logger *slog.Logger
}

// NewService builds the API clients from a service account key file.
// With no credentials file configured it returns an unconfigured
// service whose methods fail with ErrNotConfigured.
func NewService(ctx context.Context, config Config, logger *slog.Logger) (*Service, error) {
	s := &Service{
		config: config,
		logger: logger.With("component", "gsuite"),
	}
	if config.CredentialsFile == "" {
		return s, nil
	}
	if config.SheetRange == "" {
		s.config.SheetRange = "Invoices!A:F"
	}

	calSvc, err := calendar.NewService(ctx, option.WithCredentialsFile(config.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, option.WithCredentialsFile(config.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	s.cal = calSvc
	s.sheets = sheetsSvc
	return s, nil
}

// Configured reports whether API clients were built.
func (s *Service) Configured() bool { return s.cal != nil }

// ScheduleMeeting finds the first free slot of the given duration and
// books it. It returns the created event with its start time filled in.
func (s *Service) ScheduleMeeting(ctx context.Context, title, description string, duration time.Duration, from time.Time, attendees []string) (*calendar.Event, error) {
	if s.cal == nil {
		return nil, ErrNotConfigured
	}

	calendarID := s.config.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	horizon := from.Add(schedulingHorizon)
	fb, err := s.cal.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: horizon.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	var busy []Interval
	if cal, ok := fb.Calendars[calendarID]; ok {
		for _, period := range cal.Busy {
			start, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				continue
			}
			busy = append(busy, Interval{Start: start, End: end})
		}
	}

	slot, err := FirstFreeSlot(busy, from, duration)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: slot.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: slot.Add(duration).Format(time.RFC3339)},
	}
	for _, email := range attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := s.cal.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("meeting scheduled", "title", title, "start", slot)
	return created, nil
}

// AppendInvoiceRow appends one row to the invoice sheet.
func (s *Service) AppendInvoiceRow(ctx context.Context, row []any) error {
	if s.sheets == nil {
		return ErrNotConfigured
	}
	if s.config.SheetID == "" {
		return ErrNotConfigured
	}

	_, err := s.sheets.Spreadsheets.Values.Append(s.config.SheetID, s.config.SheetRange, &sheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append invoice row: %w", err)
	}
	s.logger.Info("invoice row appended", "sheet", s.config.SheetID)
	return nil
}

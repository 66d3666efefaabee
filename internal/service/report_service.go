package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"bably/internal/models"
)

// ReportService aggregates feeds and diapers for display
type ReportService struct {
	feeds   *FeedService
	diapers *DiaperService
	access  *AccessService
	demo    *DemoData
}

// NewReportService creates a new report service
func NewReportService(feeds *FeedService, diapers *DiaperService, access *AccessService, demo *DemoData) *ReportService {
	return &ReportService{feeds: feeds, diapers: diapers, access: access, demo: demo}
}

// DailyActivity returns raw records in the window with running totals.
// The demo account gets canned data and never touches the store.
func (s *ReportService) DailyActivity(ctx context.Context, caller Identity, infantID, start, end int64) (*models.DailyActivity, error) {
	if s.access.IsDemo(caller) {
		today := s.demo.Today()
		return &today, nil
	}
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermRead); err != nil {
		return nil, err
	}

	feeds, err := s.feeds.ListInWindow(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}
	diapers, err := s.diapers.ListInWindow(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}

	return &models.DailyActivity{
		Feeds:   feeds,
		Diapers: diapers,
		Totals:  models.ComputeTotals(feeds, diapers),
	}, nil
}

// CalendarEvents returns calendar-formatted feeds and diapers in the window
func (s *ReportService) CalendarEvents(ctx context.Context, caller Identity, infantID, start, end int64) (*models.EventSet, error) {
	if s.access.IsDemo(caller) {
		set := s.demo.CalendarInWindow(start, end)
		return &set, nil
	}
	if _, err := s.access.Authorize(ctx, caller, infantID, models.PermRead); err != nil {
		return nil, err
	}

	feeds, err := s.feeds.ListAsCalendarEvents(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}
	diapers, err := s.diapers.ListAsCalendarEvents(ctx, infantID, start, end)
	if err != nil {
		return nil, err
	}
	return &models.EventSet{Feeds: feeds, Diapers: diapers}, nil
}

// RangeEvents merges the calendar events newest first and applies filter
func (s *ReportService) RangeEvents(ctx context.Context, caller Identity, infantID, start, end int64, filter models.EventFilter) ([]models.CalendarEvent, error) {
	set, err := s.CalendarEvents(ctx, caller, infantID, start, end)
	if err != nil {
		return nil, err
	}
	return models.FilterEvents(set.Merged(), filter), nil
}

// WriteCSV renders events as id,title,start,end rows
func WriteCSV(w io.Writer, events []models.CalendarEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "start", "end"}); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			e.ID,
			e.Title,
			strconv.FormatInt(e.Start, 10),
			strconv.FormatInt(e.End, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

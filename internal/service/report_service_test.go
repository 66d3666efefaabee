package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bably/internal/logger"
	"bably/internal/models"
)

func fixedDemo(now time.Time) *DemoData {
	d := NewDemoData(time.UTC)
	d.now = func() time.Time { return now }
	return d
}

func TestDemoToday(t *testing.T) {
	now := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	today := fixedDemo(now).Today()

	require.Len(t, today.Feeds, 4)
	require.Len(t, today.Diapers, 4)
	for _, f := range today.Feeds {
		assert.Equal(t, 15, time.Unix(f.FedAt, 0).UTC().Day())
	}
	assert.Equal(t, models.SizeLight, today.Diapers[2].Size)
	assert.Equal(t, models.ComputeTotals(today.Feeds, today.Diapers), today.Totals)
}

func TestDemoCalendarWindow(t *testing.T) {
	now := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	demo := fixedDemo(now)

	all := demo.CalendarInWindow(0, 1)
	assert.Len(t, all.Feeds, 84)
	assert.Len(t, all.Diapers, 56)

	// day 3 only
	start := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2024, 2, 3, 23, 59, 59, 0, time.UTC).Unix()
	day := demo.CalendarInWindow(start, end)
	assert.Len(t, day.Feeds, 3)
	assert.Len(t, day.Diapers, 2)

	// bounds are inclusive
	first := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC).Unix()
	edge := demo.CalendarInWindow(first, first)
	require.Len(t, edge.Feeds, 1)
	assert.Equal(t, first*1000, edge.Feeds[0].Start)
	assert.Empty(t, edge.Diapers)
}

func TestReportServiceShortCircuitsDemo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	access := NewAccessService(f.access, f.demo)
	feeds := NewFeedService(f.feeds, f.infants, access, nil, nil, f.validator, logger.Nop())
	diapers := NewDiaperService(f.diapers, f.infants, access, nil, f.validator, logger.Nop())
	svc := NewReportService(feeds, diapers, access, NewDemoData(time.UTC))

	// no demo user or infant exists, nothing is read from storage
	demo := Identity{UserID: 999, Email: "demo@demo.com"}
	today, err := svc.DailyActivity(ctx, demo, 12345, 0, 1)
	require.NoError(t, err)
	assert.Len(t, today.Feeds, 4)

	events, err := svc.RangeEvents(ctx, demo, 12345, 0, 1, models.EventFilter{HideDiapers: true})
	require.NoError(t, err)
	assert.Len(t, events, 84)

	_, err = svc.DailyActivity(ctx, Identity{UserID: 1, Email: "someone@example.com"}, 12345, 0, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.CalendarEvent{
		{ID: "feed-1", Title: "bottle feed, 4 oz", Start: 1700000000000, End: 1700000000000},
		{ID: "diaper-2", Title: "wet, medium", Start: 1700003600000, End: 1700003600000},
	})
	require.NoError(t, err)

	assert.Equal(t, "id,title,start,end\n"+
		"feed-1,\"bottle feed, 4 oz\",1700000000000,1700000000000\n"+
		"diaper-2,\"wet, medium\",1700003600000,1700003600000\n", buf.String())
}

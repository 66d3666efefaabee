package service

import (
	"time"

	"bably/internal/models"
)

// DemoData builds the canned activity shown to the demo account. All times
// are anchored to the current day or month in loc.
type DemoData struct {
	loc *time.Location
	now func() time.Time
}

// NewDemoData creates a generator for loc
func NewDemoData(loc *time.Location) *DemoData {
	if loc == nil {
		loc = time.UTC
	}
	return &DemoData{loc: loc, now: time.Now}
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// Today returns four feeds and four diapers for the current day
func (d *DemoData) Today() models.DailyActivity {
	now := d.now().In(d.loc)
	at := func(hour, min int) int64 {
		return time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, d.loc).Unix()
	}

	feeds := []models.Feed{
		{ID: 4, Method: models.MethodNursing, FedAt: at(17, 0), Duration: intPtr(12)},
		{ID: 3, Method: models.MethodBottle, FedAt: at(14, 0), Amount: floatPtr(5)},
		{ID: 2, Method: models.MethodNursing, FedAt: at(11, 0), Duration: intPtr(15)},
		{ID: 1, Method: models.MethodBottle, FedAt: at(8, 0), Amount: floatPtr(6)},
	}
	diapers := []models.Diaper{
		{ID: 4, Type: models.DiaperSoiled, Size: models.SizeMedium, ChangedAt: at(18, 45)},
		{ID: 3, Type: models.DiaperMixed, Size: models.SizeMedium, ChangedAt: at(15, 0)},
		{ID: 2, Type: models.DiaperDry, Size: models.NormalizeDiaperSize(models.DiaperDry, models.SizeLight), ChangedAt: at(11, 30)},
		{ID: 1, Type: models.DiaperWet, Size: models.SizeHeavy, ChangedAt: at(9, 0)},
	}

	return models.DailyActivity{
		Feeds:   feeds,
		Diapers: diapers,
		Totals:  models.ComputeTotals(feeds, diapers),
	}
}

// Calendar returns days 1 to 28 of the current month with three feeds and
// two diapers each.
func (d *DemoData) Calendar() models.EventSet {
	now := d.now().In(d.loc)
	set := models.EventSet{
		Feeds:   make([]models.CalendarEvent, 0, 28*3),
		Diapers: make([]models.CalendarEvent, 0, 28*2),
	}

	var feedID, diaperID int64
	for day := 1; day <= 28; day++ {
		at := func(hour, min int) int64 {
			return time.Date(now.Year(), now.Month(), day, hour, min, 0, 0, d.loc).Unix()
		}

		for _, f := range []models.Feed{
			{Method: models.MethodBottle, Amount: floatPtr(5), FedAt: at(8, 0)},
			{Method: models.MethodNursing, Duration: intPtr(10), FedAt: at(12, 0)},
			{Method: models.MethodBottle, Amount: floatPtr(4), FedAt: at(16, 0)},
		} {
			feedID++
			f.ID = feedID
			set.Feeds = append(set.Feeds, models.FeedEvent(f))
		}

		for _, dp := range []models.Diaper{
			{Type: models.DiaperWet, Size: models.SizeMedium, ChangedAt: at(9, 30)},
			{Type: models.DiaperSoiled, Size: models.SizeHeavy, ChangedAt: at(14, 30)},
		} {
			diaperID++
			dp.ID = diaperID
			set.Diapers = append(set.Diapers, models.DiaperEvent(dp))
		}
	}
	return set
}

// CalendarInWindow filters Calendar to start*1000 <= s <= end*1000.
// The window 0..1 returns everything.
func (d *DemoData) CalendarInWindow(start, end int64) models.EventSet {
	set := d.Calendar()
	if start == 0 && end == 1 {
		return set
	}
	return models.EventSet{
		Feeds:   inclusiveWindow(set.Feeds, start, end),
		Diapers: inclusiveWindow(set.Diapers, start, end),
	}
}

func inclusiveWindow(events []models.CalendarEvent, start, end int64) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.Start >= start*1000 && e.Start <= end*1000 {
			out = append(out, e)
		}
	}
	return out
}

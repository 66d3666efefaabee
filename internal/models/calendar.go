package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EventDisplayLength is how long an event spans on the calendar. It is a
// display convention only and never stored.
const EventDisplayLength = 30 * time.Minute

// FeedColor is the calendar color for feed events.
const FeedColor = "#66bdb8"

// CalendarEvent is the display projection of a feed or diaper. Start and End
// are epoch milliseconds.
type CalendarEvent struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Start           int64  `json:"start"`
	End             int64  `json:"end"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Size            string `json:"size,omitempty"`
}

// IsFeed reports whether the event was projected from a feed.
func (e CalendarEvent) IsFeed() bool {
	return strings.HasPrefix(e.ID, "feed-")
}

// IsDiaper reports whether the event was projected from a diaper.
func (e CalendarEvent) IsDiaper() bool {
	return strings.HasPrefix(e.ID, "diaper-")
}

// FeedEvent formats a feed for the calendar.
func FeedEvent(f Feed) CalendarEvent {
	var title string
	if f.Method == MethodBottle {
		title = fmt.Sprintf("%s feed, %s oz", f.Method, formatAmount(f.Amount))
	} else {
		title = fmt.Sprintf("%s, %s mins", f.Method, formatDuration(f.Duration))
	}
	start := f.FedAt * 1000
	return CalendarEvent{
		ID:              "feed-" + strconv.FormatInt(f.ID, 10),
		Title:           title,
		Start:           start,
		End:             start + EventDisplayLength.Milliseconds(),
		BackgroundColor: FeedColor,
	}
}

// DiaperEvent formats a diaper change for the calendar.
func DiaperEvent(d Diaper) CalendarEvent {
	start := d.ChangedAt * 1000
	return CalendarEvent{
		ID:    "diaper-" + strconv.FormatInt(d.ID, 10),
		Title: d.Type + " diaper",
		Start: start,
		End:   start + EventDisplayLength.Milliseconds(),
		Size:  d.Size,
	}
}

func formatAmount(a *float64) string {
	if a == nil {
		return "0"
	}
	return strconv.FormatFloat(*a, 'f', -1, 64)
}

func formatDuration(d *int) string {
	if d == nil {
		return "0"
	}
	return strconv.Itoa(*d)
}

// EventSet groups calendar events by kind.
type EventSet struct {
	Feeds   []CalendarEvent `json:"feeds"`
	Diapers []CalendarEvent `json:"diapers"`
}

// Merged returns every event, most recent first.
func (s EventSet) Merged() []CalendarEvent {
	all := make([]CalendarEvent, 0, len(s.Feeds)+len(s.Diapers))
	all = append(all, s.Feeds...)
	all = append(all, s.Diapers...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start > all[j].Start })
	return all
}

// EventFilter hides whole categories from a report.
type EventFilter struct {
	HideFeeds   bool
	HideDiapers bool
}

// FilterEvents applies f without reordering.
func FilterEvents(events []CalendarEvent, f EventFilter) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		if f.HideFeeds && e.IsFeed() {
			continue
		}
		if f.HideDiapers && e.IsDiaper() {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DailyTotals are the running totals shown for a day.
type DailyTotals struct {
	Amount   float64 `json:"amount"`
	Duration int     `json:"duration"`
	Wet      int     `json:"wet"`
	Soiled   int     `json:"soiled"`
}

// ComputeTotals sums bottle amounts and nursing durations, and counts wet and
// soiled diapers. Mixed diapers count toward both.
func ComputeTotals(feeds []Feed, diapers []Diaper) DailyTotals {
	var t DailyTotals
	for _, f := range feeds {
		switch f.Method {
		case MethodBottle:
			if f.Amount != nil {
				t.Amount += *f.Amount
			}
		case MethodNursing:
			if f.Duration != nil {
				t.Duration += *f.Duration
			}
		}
	}
	for _, d := range diapers {
		if d.IsWet() {
			t.Wet++
		}
		if d.IsSoiled() {
			t.Soiled++
		}
	}
	return t
}

// DailyActivity is the raw record set for one window.
type DailyActivity struct {
	Feeds   []Feed      `json:"feeds"`
	Diapers []Diaper    `json:"diapers"`
	Totals  DailyTotals `json:"totals"`
}

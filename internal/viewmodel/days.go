package viewmodel

import (
	"time"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// DayOf returns the festival day an instant belongs to, as midnight in loc.
// Festival days start at startHour wall-clock time in loc, so a shift
// beginning at 2 am still counts as part of the previous night whatever
// offset the export wrote the timestamp with.
func DayOf(t time.Time, startHour int, loc *time.Location) time.Time {
	t = t.In(loc)
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	if t.Hour() < startHour {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// GroupByDay buckets events by the festival day of their start in loc.
// events must be sorted by start; days come out in ascending order and keep
// the event order within each day.
func GroupByDay(events []domain.Event, startHour int, loc *time.Location) []domain.Day {
	var days []domain.Day
	for _, e := range events {
		d := DayOf(e.Start, startHour, loc)
		if n := len(days); n > 0 && days[n-1].Date.Equal(d) {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, domain.Day{Date: d, Events: []domain.Event{e}})
	}
	if days == nil {
		return []domain.Day{}
	}
	return days
}

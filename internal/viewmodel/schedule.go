package viewmodel

import (
	"time"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// Overlaps reports whether two events share any instant.
// Intervals are half-open: an event ending at 10:00 does not overlap one
// starting at 10:00.
func Overlaps(a, b domain.Event) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Conflicts returns every pair of overlapping events in events.
// events must be sorted by start.
func Conflicts(events []domain.Event) []domain.Conflict {
	out := []domain.Conflict{}
	for i, a := range events {
		for _, b := range events[i+1:] {
			if !b.Start.Before(a.End) {
				// Sorted by start: nothing later can overlap a either.
				break
			}
			if !Overlaps(a, b) {
				continue
			}
			out = append(out, domain.Conflict{First: a, Second: b})
		}
	}
	return out
}

// Workload sums the durations of events.
func Workload(events []domain.Event) time.Duration {
	var total time.Duration
	for _, e := range events {
		if d := e.Duration(); d > 0 {
			total += d
		}
	}
	return total
}

// ScheduleFor builds the personal schedule of volunteer v.
func ScheduleFor(v domain.Volunteer, base *Base) domain.Schedule {
	events := filterEvents(&v, base.Events)
	return domain.Schedule{
		Volunteer: v,
		Events:    events,
		Workload:  Workload(events),
		Conflicts: Conflicts(events),
	}
}

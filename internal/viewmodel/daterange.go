package viewmodel

import (
	"fmt"
	"time"

	"github.com/lbc24/quest-calendar/internal/domain"
)

const day = 24 * time.Hour

// ComputeDateRange returns the window covering every event: it starts at the
// first event's start and lasts ceil((latest end - start) / 1 day) days.
// events must be sorted by start, as BuildEvents returns them.
// Returns domain.ErrNoEvents for an empty slice.
func ComputeDateRange(events []domain.Event) (domain.DateRange, error) {
	if len(events) == 0 {
		return domain.DateRange{}, fmt.Errorf("viewmodel.ComputeDateRange: %w", domain.ErrNoEvents)
	}
	start := events[0].Start
	last := events[0].End
	for _, e := range events[1:] {
		if e.End.After(last) {
			last = e.End
		}
	}
	return domain.DateRange{Start: start, Days: ceilDays(last.Sub(start))}, nil
}

// ceilDays rounds d up to whole days. A span of exactly n days is n, not n+1.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	n := d / day
	if d%day != 0 {
		n++
	}
	return int(n)
}

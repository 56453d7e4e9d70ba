// Package viewmodel turns a scheduler export into the structures the
// calendar widget renders. Everything here is a pure, synchronous function
// over already-loaded data: no I/O, no shared state.
package viewmodel

import (
	"fmt"
	"sort"
	"time"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// VolunteerIndex is an insertion-ordered lookup of volunteers by id.
type VolunteerIndex struct {
	order []domain.ResourceID
	byID  map[domain.ResourceID]domain.Volunteer
}

// Get returns the volunteer with the given id.
func (x *VolunteerIndex) Get(id domain.ResourceID) (domain.Volunteer, bool) {
	v, ok := x.byID[id]
	return v, ok
}

// Len returns the number of distinct volunteers.
func (x *VolunteerIndex) Len() int {
	return len(x.order)
}

// All returns the volunteers in insertion order. The slice is a copy.
func (x *VolunteerIndex) All() []domain.Volunteer {
	out := make([]domain.Volunteer, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.byID[id])
	}
	return out
}

// BuildVolunteers indexes raw volunteers by namespaced id; pseudo becomes title.
// A repeated id overwrites the earlier title but keeps its position.
func BuildVolunteers(raw []domain.RawVolunteer) *VolunteerIndex {
	x := &VolunteerIndex{
		order: make([]domain.ResourceID, 0, len(raw)),
		byID:  make(map[domain.ResourceID]domain.Volunteer, len(raw)),
	}
	for _, r := range raw {
		id := domain.VolunteerID(r.ID)
		if _, seen := x.byID[id]; !seen {
			x.order = append(x.order, id)
		}
		x.byID[id] = domain.Volunteer{ID: id, Title: r.Pseudo}
	}
	return x
}

// BuildPlaces maps raw places 1:1, keeping source order.
func BuildPlaces(raw []domain.RawPlace) []domain.Place {
	out := make([]domain.Place, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Place{ID: domain.PlaceID(r.ID), Title: r.Name})
	}
	return out
}

// BuildQuestTypes maps raw quest types 1:1, keeping source order.
func BuildQuestTypes(raw []domain.RawQuestType) []domain.QuestType {
	out := make([]domain.QuestType, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.QuestType{ID: domain.QuestTypeID(r.ID), Title: r.Name})
	}
	return out
}

// BuildEvents converts quests to events sorted by start time.
// Zone-less timestamps are read in loc. An empty input yields an empty,
// non-nil slice; ComputeDateRange is where emptiness becomes an error.
func BuildEvents(raw []domain.RawQuest, loc *time.Location) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(raw))
	for _, q := range raw {
		start, err := ParseTimestamp(q.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("quest %s start: %w", q.ID, err)
		}
		end, err := ParseTimestamp(q.End, loc)
		if err != nil {
			return nil, fmt.Errorf("quest %s end: %w", q.ID, err)
		}
		events = append(events, domain.Event{
			ID:          domain.QuestID(q.ID),
			Start:       start,
			End:         end,
			Title:       q.Name,
			ResourceIDs: questResources(q),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// questResources unions types, volunteers and the place, in that order,
// without duplicates.
func questResources(q domain.RawQuest) []domain.ResourceID {
	ids := make([]domain.ResourceID, 0, len(q.Types)+len(q.Volunteers)+1)
	seen := make(map[domain.ResourceID]struct{}, cap(ids))
	add := func(id domain.ResourceID) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, t := range q.Types {
		add(domain.QuestTypeID(t))
	}
	for _, v := range q.Volunteers {
		add(domain.VolunteerID(v))
	}
	add(domain.PlaceID(q.Place))
	return ids
}

// timestampLayouts are tried in order for zone-less input.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an export date-time. RFC 3339 input keeps its own
// offset; anything without an offset is interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", domain.ErrValidation, s)
}

// Base holds the entities derived once from a dataset. It is never mutated
// after Build returns.
type Base struct {
	Volunteers *VolunteerIndex
	Places     []domain.Place
	QuestTypes []domain.QuestType
	Events     []domain.Event
}

// Build derives every base entity from ds.
func Build(ds domain.Dataset, loc *time.Location) (*Base, error) {
	events, err := BuildEvents(ds.Quests, loc)
	if err != nil {
		return nil, fmt.Errorf("viewmodel.Build: %w", err)
	}
	return &Base{
		Volunteers: BuildVolunteers(ds.Volunteers),
		Places:     BuildPlaces(ds.Places),
		QuestTypes: BuildQuestTypes(ds.QuestTypes),
		Events:     events,
	}, nil
}

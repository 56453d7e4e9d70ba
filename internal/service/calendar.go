// Package service contains the business logic for the quest calendar API.
// It loads the dataset through a repo interface, builds the calendar base
// once, and answers per-request questions (which view, which volunteer)
// from the cached base. No SQL or HTTP lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/internal/repo"
	"github.com/lbc24/quest-calendar/internal/uistate"
	"github.com/lbc24/quest-calendar/internal/viewmodel"
)

// DefaultWindowDays is the window length of a calendar with no events.
const DefaultWindowDays = 7

// Settings tunes a CalendarService. Zero values fall back to UTC, a
// midnight day start, and time.Now.
type Settings struct {
	// Location resolves zone-less quest timestamps and today's midnight.
	Location *time.Location

	// DayStartHour is the local hour at which a festival day begins.
	DayStartHour int

	// Now is the service clock.
	Now func() time.Time
}

// CalendarService answers calendar queries over one dataset source.
type CalendarService struct {
	repo     repo.DatasetRepo
	loc      *time.Location
	dayStart int
	now      func() time.Time

	mu   sync.RWMutex
	base *viewmodel.Base
}

// NewCalendarService constructs a CalendarService backed by the provided DatasetRepo.
// The dataset is loaded lazily on first use.
func NewCalendarService(r repo.DatasetRepo, s Settings) *CalendarService {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return &CalendarService{repo: r, loc: s.Location, dayStart: s.DayStartHour, now: s.Now}
}

// Options returns the widget option record for the given selector value and
// widget view. An empty view means uistate.DefaultView; an empty volunteer
// or domain.NoVolunteer means no filter.
func (s *CalendarService) Options(ctx context.Context, volunteer, view string) (domain.CalendarOptions, error) {
	if view == "" {
		view = uistate.DefaultView
	}
	if !uistate.IsKnownView(view) {
		return domain.CalendarOptions{}, fmt.Errorf("service.CalendarService.Options: %w: unknown view %q", domain.ErrValidation, view)
	}

	base, err := s.loadBase(ctx)
	if err != nil {
		return domain.CalendarOptions{}, fmt.Errorf("service.CalendarService.Options: %w", err)
	}

	// Replay the page interaction: the widget mounts the view, then the
	// selector fires. The last notified view is what the page would render.
	c := uistate.New(base)
	c.ChangeView(view)
	var v domain.View
	c.Subscribe(func(next domain.View) { v = next })
	if err := c.SelectVolunteer(volunteer); err != nil {
		return domain.CalendarOptions{}, fmt.Errorf("service.CalendarService.Options: %w", err)
	}

	window := s.dateRange(base)
	return domain.CalendarOptions{
		View:                      c.ActiveView(),
		Date:                      window.Start,
		Duration:                  domain.Duration{Days: window.Days},
		Resources:                 v.Resources,
		Events:                    v.Events,
		FilterEventsWithResources: true,
	}, nil
}

// dateRange computes the window over all events, or today's window when the
// dataset has none.
func (s *CalendarService) dateRange(base *viewmodel.Base) domain.DateRange {
	r, err := viewmodel.ComputeDateRange(base.Events)
	if errors.Is(err, domain.ErrNoEvents) {
		now := s.now().In(s.loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
		return domain.DateRange{Start: today, Days: DefaultWindowDays}
	}
	return r
}

// Selector returns the volunteer drop-down entries.
func (s *CalendarService) Selector(ctx context.Context) ([]domain.SelectorOption, error) {
	base, err := s.loadBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CalendarService.Selector: %w", err)
	}
	return uistate.SelectorOptions(base), nil
}

// Schedule returns the personal schedule of the volunteer with the given
// namespaced id (e.g. "v_12").
func (s *CalendarService) Schedule(ctx context.Context, volunteerID string) (domain.Schedule, error) {
	base, err := s.loadBase(ctx)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.CalendarService.Schedule: %w", err)
	}
	v, err := lookupVolunteer(base, volunteerID)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.CalendarService.Schedule: %w", err)
	}
	return viewmodel.ScheduleFor(v, base), nil
}

// Events returns the events visible for the selector value, in start order.
func (s *CalendarService) Events(ctx context.Context, volunteer string) ([]domain.Event, error) {
	base, err := s.loadBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CalendarService.Events: %w", err)
	}
	c := uistate.New(base)
	if err := c.SelectVolunteer(volunteer); err != nil {
		return nil, fmt.Errorf("service.CalendarService.Events: %w", err)
	}
	return c.View().Events, nil
}

// Days groups the visible events by festival day.
func (s *CalendarService) Days(ctx context.Context, volunteer string) ([]domain.Day, error) {
	events, err := s.Events(ctx, volunteer)
	if err != nil {
		return nil, fmt.Errorf("service.CalendarService.Days: %w", err)
	}
	return viewmodel.GroupByDay(events, s.dayStart, s.loc), nil
}

// Import validates ds, stores it as a new snapshot and makes it the current
// dataset. Returns domain.ErrUnsupported when the source is read-only and
// domain.ErrValidation when ds cannot be built into a calendar.
func (s *CalendarService) Import(ctx context.Context, ds domain.Dataset) (uuid.UUID, error) {
	w, ok := s.repo.(repo.DatasetWriter)
	if !ok {
		return uuid.Nil, fmt.Errorf("service.CalendarService.Import: %w: dataset source is read-only", domain.ErrUnsupported)
	}
	base, err := viewmodel.Build(ds, s.loc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.CalendarService.Import: %w", err)
	}
	id, err := w.Save(ctx, ds)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service.CalendarService.Import: %w", err)
	}
	s.swap(base, "import")
	return id, nil
}

// Reload rebuilds the base from the source, replacing the cached one only
// on success.
func (s *CalendarService) Reload(ctx context.Context) error {
	base, err := s.build(ctx)
	if err != nil {
		return fmt.Errorf("service.CalendarService.Reload: %w", err)
	}
	s.swap(base, "reload")
	return nil
}

// loadBase returns the cached base, building it on first use.
func (s *CalendarService) loadBase(ctx context.Context) (*viewmodel.Base, error) {
	s.mu.RLock()
	base := s.base
	s.mu.RUnlock()
	if base != nil {
		recordCacheRequest(true)
		return base, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base != nil {
		recordCacheRequest(true)
		return s.base, nil
	}
	recordCacheRequest(false)
	base, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.base = base
	datasetEvents.Set(float64(len(base.Events)))
	return base, nil
}

func (s *CalendarService) build(ctx context.Context) (*viewmodel.Base, error) {
	ds, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return viewmodel.Build(ds, s.loc)
}

func (s *CalendarService) swap(base *viewmodel.Base, reason string) {
	s.mu.Lock()
	s.base = base
	s.mu.Unlock()
	datasetEvents.Set(float64(len(base.Events)))
	recordCacheInvalidate(reason)
}

func lookupVolunteer(base *viewmodel.Base, value string) (domain.Volunteer, error) {
	id, err := domain.ParseResourceID(value)
	if err != nil || id.Kind != domain.KindVolunteer {
		return domain.Volunteer{}, fmt.Errorf("%w: volunteer %q", domain.ErrNotFound, value)
	}
	v, ok := base.Volunteers.Get(id)
	if !ok {
		return domain.Volunteer{}, fmt.Errorf("%w: volunteer %q", domain.ErrNotFound, value)
	}
	return v, nil
}

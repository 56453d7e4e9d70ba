// Package handler implements the HTTP handlers for the quest calendar API.
// All handlers are methods on Server. Methods are split into topic files
// (health.go, calendar.go, dataset.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/spec"
)

// CalendarServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching a dataset source.
type CalendarServicer interface {
	Options(ctx context.Context, volunteer, view string) (domain.CalendarOptions, error)
	Selector(ctx context.Context) ([]domain.SelectorOption, error)
	Schedule(ctx context.Context, volunteerID string) (domain.Schedule, error)
	Events(ctx context.Context, volunteer string) ([]domain.Event, error)
	Days(ctx context.Context, volunteer string) ([]domain.Day, error)
	Import(ctx context.Context, ds domain.Dataset) (uuid.UUID, error)
	Reload(ctx context.Context) error
}

// Server serves every API endpoint.
type Server struct {
	calendar CalendarServicer
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for generated timestamps (ICS DTSTAMP).
// Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards handler-level logs.
func NewServer(calendar CalendarServicer, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{calendar: calendar, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers every endpoint on a fresh chi router.
// Cross-cutting middleware and /metrics are added by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Get("/calendar", s.GetCalendar)
	r.Get("/calendar.ics", s.GetCalendarICS)
	r.Get("/days", s.GetDays)

	r.Get("/volunteers", s.ListVolunteers)
	r.Get("/volunteers/{volunteerId}/schedule", s.GetSchedule)

	r.Post("/dataset", s.ImportDataset)
	r.Post("/dataset/reload", s.ReloadDataset)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}

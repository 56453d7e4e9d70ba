package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// GetCalendar implements GET /calendar.
// It returns the widget option record for ?volunteer= and ?view=.
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	volunteer, err := bindVolunteer(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	view, err := bindView(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	opts, err := s.calendar.Options(r.Context(), volunteer, view)
	if err != nil {
		s.writeServiceError(w, r, err, "volunteer not found")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ListVolunteers implements GET /volunteers.
// The "none" sentinel always comes first.
func (s *Server) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	opts, err := s.calendar.Selector(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "dataset not found")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ScheduleResponse is the body of GET /volunteers/{volunteerId}/schedule.
type ScheduleResponse struct {
	Volunteer       domain.Volunteer   `json:"volunteer"`
	Events          []domain.Event     `json:"events"`
	WorkloadMinutes int64              `json:"workloadMinutes"`
	Conflicts       []ConflictResponse `json:"conflicts"`
}

// ConflictResponse names two overlapping events of one volunteer.
type ConflictResponse struct {
	First  domain.ResourceID `json:"first"`
	Second domain.ResourceID `json:"second"`
}

// GetSchedule implements GET /volunteers/{volunteerId}/schedule.
func (s *Server) GetSchedule(w http.ResponseWriter, r *http.Request) {
	sched, err := s.calendar.Schedule(r.Context(), chi.URLParam(r, "volunteerId"))
	if err != nil {
		s.writeServiceError(w, r, err, "volunteer not found")
		return
	}

	conflicts := make([]ConflictResponse, 0, len(sched.Conflicts))
	for _, c := range sched.Conflicts {
		conflicts = append(conflicts, ConflictResponse{First: c.First.ID, Second: c.Second.ID})
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{
		Volunteer:       sched.Volunteer,
		Events:          sched.Events,
		WorkloadMinutes: int64(sched.Workload / time.Minute),
		Conflicts:       conflicts,
	})
}

// DayResponse is one festival day of GET /days.
type DayResponse struct {
	Date   openapi_types.Date `json:"date"`
	Events []domain.Event     `json:"events"`
}

// GetDays implements GET /days.
// Without ?date= it lists every festival day; with it, only that day, or 404
// when nothing is scheduled then.
func (s *Server) GetDays(w http.ResponseWriter, r *http.Request) {
	volunteer, err := bindVolunteer(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	date, err := bindDate(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	days, err := s.calendar.Days(r.Context(), volunteer)
	if err != nil {
		s.writeServiceError(w, r, err, "volunteer not found")
		return
	}

	out := make([]DayResponse, 0, len(days))
	for _, d := range days {
		if date != nil && d.Date.Format(time.DateOnly) != date.Format(time.DateOnly) {
			continue
		}
		out = append(out, DayResponse{Date: openapi_types.Date{Time: d.Date}, Events: d.Events})
	}
	if date != nil && len(out) == 0 {
		writeJSON(w, http.StatusNotFound, notFoundBody("no quests on "+date.Format(time.DateOnly)))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

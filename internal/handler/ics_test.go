package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbc24/quest-calendar/internal/domain"
	"github.com/lbc24/quest-calendar/internal/handler"
)

func TestGetCalendarICS(t *testing.T) {
	e := taskEvent()
	e.Title = "Bar, tireuse; nuit"
	svc := &mockCalendarServicer{
		events: func(_ context.Context, volunteer string) ([]domain.Event, error) {
			assert.Equal(t, "v_1", volunteer)
			return []domain.Event{e}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/calendar.ics?volunteer=v_1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=quests_v_1.ics", rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(body, "END:VCALENDAR\r\n"))
	assert.Contains(t, body, "UID:q_1@quest-calendar\r\n")
	assert.Contains(t, body, "DTSTART:20240101T090000Z\r\n")
	assert.Contains(t, body, "DTEND:20240101T110000Z\r\n")
	assert.Contains(t, body, `SUMMARY:Bar\, tireuse\; nuit`+"\r\n")
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
}

func TestGetCalendarICS_AllEvents(t *testing.T) {
	svc := &mockCalendarServicer{
		events: func(context.Context, string) ([]domain.Event, error) { return []domain.Event{}, nil },
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/calendar.ics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=quests.ics", rec.Header().Get("Content-Disposition"))
	assert.NotContains(t, rec.Body.String(), "BEGIN:VEVENT")
}

func TestGetCalendarICS_UnknownVolunteer(t *testing.T) {
	svc := &mockCalendarServicer{
		events: func(context.Context, string) ([]domain.Event, error) { return nil, domain.ErrNotFound },
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/calendar.ics?volunteer=v_42")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCalendarICS_StampUsesServerClock(t *testing.T) {
	svc := &mockCalendarServicer{
		events: func(context.Context, string) ([]domain.Event, error) { return []domain.Event{taskEvent()}, nil },
	}
	paris := time.FixedZone("Europe/Paris", 2*60*60)
	clock := func() time.Time { return time.Date(2024, 7, 4, 12, 30, 0, 0, paris) }

	h := handler.NewServer(svc, nil, handler.WithClock(clock)).Routes()
	first := do(t, h, http.MethodGet, "/calendar.ics").Body.String()
	second := do(t, h, http.MethodGet, "/calendar.ics").Body.String()

	assert.Contains(t, first, "DTSTAMP:20240704T103000Z\r\n")
	assert.Equal(t, first, second)
}

func TestGetCalendarICS_FoldsLongLines(t *testing.T) {
	e := taskEvent()
	e.Title = strings.Repeat("Installation des barrières ", 5)
	svc := &mockCalendarServicer{
		events: func(context.Context, string) ([]domain.Event, error) { return []domain.Event{e}, nil },
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/calendar.ics")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, l := range strings.Split(strings.TrimSuffix(body, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(l), 75, "line %q", l)
		assert.True(t, utf8.ValidString(l), "line %q splits a character", l)
	}
	unfolded := strings.ReplaceAll(body, "\r\n ", "")
	assert.Contains(t, unfolded, "SUMMARY:"+e.Title+"\r\n")
}

func TestGetCalendarICS_IgnoresCalendarOnlyParams(t *testing.T) {
	svc := &mockCalendarServicer{
		events: func(context.Context, string) ([]domain.Event, error) { return []domain.Event{}, nil },
	}

	rec := do(t, newHTTPHandler(svc), http.MethodGet, "/calendar.ics?date=garbage&view=timeGridDay")

	assert.Equal(t, http.StatusOK, rec.Code)
}

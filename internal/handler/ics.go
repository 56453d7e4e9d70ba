package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lbc24/quest-calendar/internal/domain"
)

const (
	icsProductID = "-//quest-calendar//Quest Calendar//FR"
	icsStamp     = "20060102T150405Z"
	icsLineLimit = 75
)

// GetCalendarICS implements GET /calendar.ics.
// It exports the events visible for ?volunteer= as an iCalendar feed, so a
// volunteer can subscribe to their own shifts.
func (s *Server) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	volunteer, err := bindVolunteer(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	events, err := s.calendar.Events(r.Context(), volunteer)
	if err != nil {
		s.writeServiceError(w, r, err, "volunteer not found")
		return
	}

	name := "quests"
	if volunteer != "" && volunteer != domain.NoVolunteer {
		name += "_" + volunteer
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", name))
	if err := writeICS(w, events, s.now()); err != nil {
		s.log.WarnContext(r.Context(), "handler: write ics", "error", err)
	}
}

// writeICS writes events as a VCALENDAR. Times are emitted in UTC; the
// client converts them to the reader's zone.
func writeICS(w io.Writer, events []domain.Event, stamp time.Time) error {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(foldICS(fmt.Sprintf(format, args...)))
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	for _, e := range events {
		line("BEGIN:VEVENT")
		line("UID:%s@quest-calendar", e.ID)
		line("DTSTAMP:%s", stamp.UTC().Format(icsStamp))
		line("DTSTART:%s", e.Start.UTC().Format(icsStamp))
		line("DTEND:%s", e.End.UTC().Format(icsStamp))
		line("SUMMARY:%s", escapeICS(e.Title))
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	_, err := io.WriteString(w, b.String())
	return err
}

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// escapeICS escapes a TEXT value per RFC 5545 §3.3.11.
func escapeICS(s string) string {
	return icsEscaper.Replace(s)
}

// foldICS splits a content line longer than 75 octets into CRLF + space
// continuations (RFC 5545 §3.1). Breaks fall on rune boundaries so a
// multibyte character is never split.
func foldICS(s string) string {
	if len(s) <= icsLineLimit {
		return s
	}
	var b strings.Builder
	limit := icsLineLimit
	n := 0
	for len(s) > 0 {
		_, size := utf8.DecodeRuneInString(s)
		if n+size > limit {
			b.WriteString("\r\n ")
			// The leading space counts toward the continuation's limit.
			limit = icsLineLimit - 1
			n = 0
		}
		b.WriteString(s[:size])
		n += size
		s = s[size:]
	}
	return b.String()
}

package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lbc24/quest-calendar/internal/repo"
)

// ImportResponse is the body of a successful POST /dataset.
type ImportResponse struct {
	SnapshotID uuid.UUID `json:"snapshotId"`
}

// ImportDataset implements POST /dataset.
// The body is a scheduler export in the same JSON format as the file source.
// Returns 201 with the new snapshot id, 405 when the source is read-only.
func (s *Server) ImportDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := repo.Decode(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be a JSON dataset export"))
		return
	}

	id, err := s.calendar.Import(r.Context(), ds)
	if err != nil {
		s.writeServiceError(w, r, err, "dataset not found")
		return
	}
	s.log.InfoContext(r.Context(), "dataset imported",
		"snapshot_id", id,
		"volunteers", len(ds.Volunteers),
		"quests", len(ds.Quests),
	)
	writeJSON(w, http.StatusCreated, ImportResponse{SnapshotID: id})
}

// ReloadDataset implements POST /dataset/reload.
// It drops the cached calendar and reloads it from the source. On failure
// the previous calendar keeps being served.
func (s *Server) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.calendar.Reload(r.Context()); err != nil {
		s.writeServiceError(w, r, err, "dataset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

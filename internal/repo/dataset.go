// Package repo contains the dataset sources of the quest calendar.
// Each source has its own file; all satisfy DatasetRepo. No calendar logic
// lives here, only loading, decoding and storing the scheduler export.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// DatasetRepo loads the current scheduler export.
// The service layer depends on this interface, not on a concrete source,
// which allows the service to be unit-tested with a mock.
type DatasetRepo interface {
	// Load returns the current dataset.
	// Returns domain.ErrNotFound if the source holds no dataset yet.
	Load(ctx context.Context) (domain.Dataset, error)
}

// DatasetWriter is implemented by sources that can store a new export.
type DatasetWriter interface {
	// Save stores ds as a new snapshot and returns its id.
	// The saved snapshot becomes the one Load returns.
	Save(ctx context.Context, ds domain.Dataset) (uuid.UUID, error)
}

// Decode reads one JSON export from r.
// Unknown fields are ignored; the export carries extra keys in some versions.
func Decode(r io.Reader) (domain.Dataset, error) {
	var ds domain.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.Decode: %w: %w", domain.ErrValidation, err)
	}
	return ds, nil
}

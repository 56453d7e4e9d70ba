package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// fileDatasetRepo reads the export from a JSON file on disk.
// The file is re-read on every Load, so replacing it and reloading the
// service picks up the new export.
type fileDatasetRepo struct {
	path string
}

// NewFileDatasetRepo constructs a DatasetRepo backed by the JSON file at path.
func NewFileDatasetRepo(path string) DatasetRepo {
	return &fileDatasetRepo{path: path}
}

// Load opens and decodes the file.
func (r *fileDatasetRepo) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Dataset{}, fmt.Errorf("repo.FileDatasetRepo.Load: %s: %w", r.path, domain.ErrNotFound)
		}
		return domain.Dataset{}, fmt.Errorf("repo.FileDatasetRepo.Load: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.FileDatasetRepo.Load: %s: %w", r.path, err)
	}
	return ds, nil
}

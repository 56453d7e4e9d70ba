package domain

import "errors"

// ErrNotFound is returned when a requested volunteer or dataset does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails validation (e.g. an unparseable
// quest timestamp or an unknown view name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNoEvents is returned when a date range is requested over an empty event
// list. The min/max of an empty sequence is undefined, so callers must pick a
// fallback window instead.
var ErrNoEvents = errors.New("no events")

// ErrUnsupported is returned when a dataset source cannot perform an
// operation, e.g. importing into a read-only file source.
// Handlers should map this to HTTP 405.
var ErrUnsupported = errors.New("unsupported operation")

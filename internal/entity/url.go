// Package entity defines the entities and error kinds shared by every layer
// of the application.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when a short code cannot be decoded or an
	// identifier cannot be encoded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrURLNotFound is returned when no URL is stored under an identifier.
	ErrURLNotFound = errors.New("url not found")
	// ErrRegistryUnavailable wraps failures of the underlying storage.
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// URL represents a stored origin URL.
type URL struct {
	ID          int64     // ID is the identifier assigned by the registry. It never changes.
	ShortCode   string    // ShortCode is derived from ID on demand and never stored.
	OriginalURL string    // OriginalURL is unique across all records.
	CreatedAt   time.Time // CreatedAt is the timestamp of the first submission.
	UpdatedAt   time.Time // UpdatedAt is touched on every repeat submission.
}

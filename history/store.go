// Package history persists computed statistics results keyed by opaque
// identifiers, so earlier calculations can be fetched again or listed.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/emperance/statify/stats"
)

// ErrNotFound is returned when no entry exists for the requested ID.
var ErrNotFound = errors.New("history entry not found")

// Entry is a stored calculation: the immutable result plus the identifier
// and timestamp assigned at save time.
type Entry struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Result    *stats.Result `json:"result"`
}

// Store defines the persistence contract for calculation history.
type Store interface {
	// Save stores a result under a fresh opaque ID and returns the entry.
	Save(ctx context.Context, res *stats.Result) (Entry, error)

	// Get returns the entry with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Entry, error)

	// List returns up to limit entries, newest first. A limit below 1
	// returns every entry.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close releases any underlying resources.
	Close() error
}

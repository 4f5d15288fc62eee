package changetracker

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving change events.
type Store interface {
	// Append adds a new event to the store, keyed by a rendered entity link.
	Append(ctx context.Context, linkKey, eventType string, payload []byte, metadata map[string]string) error

	// GetByLink retrieves all events recorded under a rendered entity link.
	GetByLink(ctx context.Context, linkKey string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}

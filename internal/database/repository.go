package database

import (
	"context"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// RunnerReader provides read-only access to runner records
type RunnerReader interface {
	// Get retrieves a runner by ID, returns nil if not found
	Get(ctx context.Context, runnerID string) (*runner.Record, error)
	// List returns the most recent registrations, newest first
	List(ctx context.Context, limit int) ([]runner.Record, error)
	// Count returns the total number of registered runners
	Count(ctx context.Context) (int, error)
}

// RunnerWriter provides write access to runner records
type RunnerWriter interface {
	RunnerReader

	// Create assigns a fresh runner ID and stores the record. IDs that are
	// already taken are redrawn up to runner.MaxIDAttempts times.
	Create(ctx context.Context, r NewRunner) (*runner.Record, error)

	// UpdateCapture attaches the photo URL and demographic estimate after a
	// booth capture. Returns ErrNotFound for an unknown ID.
	UpdateCapture(ctx context.Context, runnerID string, u CaptureUpdate) error
}

// Store is a RunnerWriter that owns a connection.
type Store interface {
	RunnerWriter
	Close() error
}

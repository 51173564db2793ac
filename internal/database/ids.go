package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// IDGenerator draws a candidate runner ID.
type IDGenerator func() string

// InsertWithFreshID draws IDs from gen and calls insert until one succeeds.
// insert must return ErrDuplicateID (possibly wrapped) when the ID is taken;
// any other error aborts immediately.
func InsertWithFreshID(ctx context.Context, gen IDGenerator, insert func(ctx context.Context, runnerID string) error) (string, error) {
	if gen == nil {
		gen = runner.GenerateID
	}
	for range runner.MaxIDAttempts {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("allocating runner ID: %w", err)
		}
		id := gen()
		err := insert(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, runner.MaxIDAttempts)
}

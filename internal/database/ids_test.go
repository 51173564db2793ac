package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

func sequence(ids ...string) IDGenerator {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestInsertWithFreshID_RetriesOnDuplicate(t *testing.T) {
	taken := map[string]bool{"00001": true, "00002": true}
	var tried []string

	id, err := InsertWithFreshID(context.Background(), sequence("00001", "00002", "00003"), func(ctx context.Context, id string) error {
		tried = append(tried, id)
		if taken[id] {
			return fmt.Errorf("insert: %w", ErrDuplicateID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "00003" {
		t.Errorf("expected 00003, got %s", id)
	}
	if len(tried) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(tried))
	}
}

func TestInsertWithFreshID_Exhausted(t *testing.T) {
	attempts := 0
	_, err := InsertWithFreshID(context.Background(), sequence("00001"), func(ctx context.Context, id string) error {
		attempts++
		return ErrDuplicateID
	})
	if !errors.Is(err, ErrIDSpaceExhausted) {
		t.Fatalf("expected ErrIDSpaceExhausted, got %v", err)
	}
	if attempts != runner.MaxIDAttempts {
		t.Errorf("expected %d attempts, got %d", runner.MaxIDAttempts, attempts)
	}
}

func TestInsertWithFreshID_OtherErrorStops(t *testing.T) {
	boom := errors.New("connection refused")
	attempts := 0
	_, err := InsertWithFreshID(context.Background(), sequence("00001"), func(ctx context.Context, id string) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestInsertWithFreshID_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := InsertWithFreshID(ctx, nil, func(ctx context.Context, id string) error {
		t.Fatal("insert should not be called")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewRunner_Record(t *testing.T) {
	n := NewRunner{Nickname: "Taro", Language: "ja", TargetTime: "03:30:00", TargetTimeNumber: 1, MessageNumber: 2, UpperPhrase: "up", LowerPhrase: "down"}
	r := n.Record("01234", testTime)

	if r.RunnerID != "01234" || r.Nickname != "Taro" || r.UpperPhrase != "up" || r.LowerPhrase != "down" {
		t.Errorf("unexpected record: %+v", r)
	}
	if !r.CreatedAt.Equal(testTime) {
		t.Errorf("expected created at %v, got %v", testTime, r.CreatedAt)
	}
	if r.HasCapture() {
		t.Error("new record should not have a capture")
	}
}

// Package dbtest holds the behaviour checks shared by every runner store backend.
package dbtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
)

// IDSettable is implemented by backends that let tests force the drawn IDs.
type IDSettable interface {
	SetIDGenerator(gen database.IDGenerator)
}

func sampleRunner(nickname string) database.NewRunner {
	return database.NewRunner{
		Nickname:         nickname,
		Language:         "ja",
		TargetTime:       "03:30:00",
		TargetTimeNumber: 1,
		Message:          "初挑戦！完走するぞ！",
		MessageNumber:    1,
		UpperPhrase:      "初挑戦、本当にすごい！",
		LowerPhrase:      "あなたならきっとできる！",
	}
}

// RunRunnerStore exercises create, lookup, listing, capture updates and ID
// collision handling against an empty store.
func RunRunnerStore(t *testing.T, store database.RunnerWriter) {
	t.Helper()
	ctx := context.Background()

	var created string

	t.Run("CreateAndGet", func(t *testing.T) {
		rec, err := store.Create(ctx, sampleRunner("Taro"))
		if err != nil {
			t.Fatalf("Failed to create runner: %v", err)
		}
		if len(rec.RunnerID) != 5 {
			t.Fatalf("Expected 5-digit runner ID, got %q", rec.RunnerID)
		}
		created = rec.RunnerID

		got, err := store.Get(ctx, rec.RunnerID)
		if err != nil {
			t.Fatalf("Failed to get runner: %v", err)
		}
		if got == nil {
			t.Fatal("Expected runner, got nil")
		}
		if got.Nickname != "Taro" {
			t.Errorf("Expected nickname 'Taro', got '%s'", got.Nickname)
		}
		if got.UpperPhrase != rec.UpperPhrase || got.LowerPhrase != rec.LowerPhrase {
			t.Errorf("Phrases changed on read: got %q/%q, want %q/%q", got.UpperPhrase, got.LowerPhrase, rec.UpperPhrase, rec.LowerPhrase)
		}
		if got.TargetTimeNumber != 1 || got.MessageNumber != 1 {
			t.Errorf("Unexpected indices %d/%d", got.TargetTimeNumber, got.MessageNumber)
		}
		if got.CreatedAt.IsZero() {
			t.Error("Expected created_at to be set")
		}
		if got.HasCapture() {
			t.Error("Expected no capture on a fresh record")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := store.Get(ctx, "99999x")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing runner, got %+v", got)
		}
	})

	t.Run("UpdateCapture", func(t *testing.T) {
		if created == "" {
			t.Skip("create failed")
		}
		err := store.UpdateCapture(ctx, created, database.CaptureUpdate{
			PhotoURL: "https://cdn.example.com/runner-photos/photos/" + created + ".jpg",
			AgeGroup: "30s",
			Gender:   "female",
		})
		if err != nil {
			t.Fatalf("Failed to update capture: %v", err)
		}

		got, err := store.Get(ctx, created)
		if err != nil || got == nil {
			t.Fatalf("Failed to reload runner: %v", err)
		}
		if got.AgeGroup != "30s" || got.Gender != "female" || !got.HasCapture() {
			t.Errorf("Capture fields not stored: %+v", got)
		}
		if got.UpperPhrase != "初挑戦、本当にすごい！" {
			t.Errorf("Update must not touch phrases, got %q", got.UpperPhrase)
		}

		// Partial update keeps the other fields.
		if err := store.UpdateCapture(ctx, created, database.CaptureUpdate{PhotoURL: "https://cdn.example.com/retake.jpg"}); err != nil {
			t.Fatalf("Failed partial update: %v", err)
		}
		got, _ = store.Get(ctx, created)
		if got.PhotoURL != "https://cdn.example.com/retake.jpg" || got.AgeGroup != "30s" {
			t.Errorf("Partial update clobbered fields: %+v", got)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := store.UpdateCapture(ctx, "nope!", database.CaptureUpdate{Gender: "male"})
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		for _, name := range []string{"Hanako", "Jiro"} {
			time.Sleep(2 * time.Millisecond)
			if _, err := store.Create(ctx, sampleRunner(name)); err != nil {
				t.Fatalf("Failed to create %s: %v", name, err)
			}
		}

		records, err := store.List(ctx, 2)
		if err != nil {
			t.Fatalf("Failed to list runners: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(records))
		}
		if records[0].Nickname != "Jiro" || records[1].Nickname != "Hanako" {
			t.Errorf("Expected newest first, got %s, %s", records[0].Nickname, records[1].Nickname)
		}

		count, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3 runners, got %d", count)
		}
	})

	t.Run("CollisionRetry", func(t *testing.T) {
		settable, ok := store.(IDSettable)
		if !ok || created == "" {
			t.Skip("backend does not expose its ID generator")
		}
		draws := []string{created, created, "00042"}
		i := 0
		settable.SetIDGenerator(func() string {
			id := draws[i%len(draws)]
			i++
			return id
		})

		rec, err := store.Create(ctx, sampleRunner("Saburo"))
		if err != nil {
			t.Fatalf("Expected retry to succeed, got %v", err)
		}
		if rec.RunnerID != "00042" {
			t.Errorf("Expected redrawn ID 00042, got %s", rec.RunnerID)
		}

		settable.SetIDGenerator(func() string { return created })
		if _, err := store.Create(ctx, sampleRunner("Shiro")); !errors.Is(err, database.ErrIDSpaceExhausted) {
			t.Errorf("Expected ErrIDSpaceExhausted, got %v", err)
		}

		original, _ := store.Get(ctx, created)
		if original == nil || original.Nickname != "Taro" {
			t.Errorf("Collision must not overwrite the existing runner, got %+v", original)
		}
	})
}

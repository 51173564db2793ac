package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

func TestExportRunnersCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runners.csv")
	records := []runner.Record{
		{
			RunnerID:         "01234",
			Nickname:         "Aki, the fast",
			Language:         "ja",
			TargetTime:       "03:15:00",
			TargetTimeNumber: 1,
			MessageNumber:    2,
			CreatedAt:        time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			PhotoURL:         "/photos/01234.jpg",
			AgeGroup:         "30s",
			Gender:           "female",
		},
		{RunnerID: "99999", Nickname: "Sam", Language: "en", TargetTimeNumber: 3, MessageNumber: 1},
	}

	if err := exportRunnersCSV(path, records, false); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "runner_id" || len(rows[0]) != len(runnerCSVHeader) {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "01234" || rows[1][1] != "Aki, the fast" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[1][9] != "2026-03-01T08:00:00Z" {
		t.Errorf("expected RFC3339 created_at, got %q", rows[1][9])
	}
	if rows[2][10] != "" {
		t.Errorf("expected empty photo_url for runner without capture, got %q", rows[2][10])
	}
}

func TestDisplayTargetTime(t *testing.T) {
	if got := displayTargetTime(""); got != "-" {
		t.Errorf("expected dash for empty target time, got %q", got)
	}
	if got := displayTargetTime("03:15:00"); got != "03:15:00" {
		t.Errorf("expected target time unchanged, got %q", got)
	}
}

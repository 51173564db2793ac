package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

var testTime = time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(context.Background(), &config.DatabaseConfig{Driver: "postgres"})
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL error, got %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.DatabaseConfig{Driver: "oracle", URL: "x"})
	if err == nil || !strings.Contains(err.Error(), "unknown database driver") {
		t.Errorf("expected unknown driver error, got %v", err)
	}
}

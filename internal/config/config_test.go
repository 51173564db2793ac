package config

import (
	"testing"
	"time"
)

func TestParseCameras(t *testing.T) {
	cameras := ParseCameras("front=http://10.0.0.5/snap.jpg, http://10.0.0.6/shot ,,side = http://cam/side")

	if len(cameras) != 3 {
		t.Fatalf("expected 3 cameras, got %d", len(cameras))
	}

	expected := []CameraSource{
		{Name: "front", URL: "http://10.0.0.5/snap.jpg"},
		{Name: "camera-2", URL: "http://10.0.0.6/shot"},
		{Name: "side", URL: "http://cam/side"},
	}
	for i, want := range expected {
		if cameras[i] != want {
			t.Errorf("camera %d = %+v, want %+v", i, cameras[i], want)
		}
	}
}

func TestParseCameras_Empty(t *testing.T) {
	if cameras := ParseCameras(""); len(cameras) != 0 {
		t.Errorf("expected no cameras, got %d", len(cameras))
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	if got := envInt("TEST_ENV_INT", 5); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	t.Setenv("TEST_ENV_INT", "-1")
	if got := envInt("TEST_ENV_INT", 5); got != 5 {
		t.Errorf("expected default for negative value, got %d", got)
	}

	t.Setenv("TEST_ENV_INT", "abc")
	if got := envInt("TEST_ENV_INT", 5); got != 5 {
		t.Errorf("expected default for invalid value, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_ENV_DURATION", "250ms")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}

	t.Setenv("TEST_ENV_DURATION", "0s")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != 0 {
		t.Errorf("expected zero duration to be accepted, got %v", got)
	}

	t.Setenv("TEST_ENV_DURATION", "soon")
	if got := envDuration("TEST_ENV_DURATION", time.Second); got != time.Second {
		t.Errorf("expected default for invalid value, got %v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_DRIVER", "STORAGE_BACKEND", "FACE_PROVIDER", "CAPTURE_COUNTDOWN_TICKS", "CAPTURE_PROCESSING_DELAY", "DEFAULT_LOCALE", "CAMERAS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("expected local storage, got %q", cfg.Storage.Backend)
	}
	if cfg.Face.Provider != "none" {
		t.Errorf("expected no face provider, got %q", cfg.Face.Provider)
	}
	if cfg.Capture.CountdownTicks != 5 {
		t.Errorf("expected 5 countdown ticks, got %d", cfg.Capture.CountdownTicks)
	}
	if cfg.Capture.ProcessingDelay != 3*time.Second {
		t.Errorf("expected 3s processing delay, got %v", cfg.Capture.ProcessingDelay)
	}
	if cfg.Locale != "ja" {
		t.Errorf("expected ja locale, got %q", cfg.Locale)
	}
}

func TestGetModelPricing(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gpt-4.1-mini")
	if pricing.Standard.Input <= 0 {
		t.Error("expected embedded pricing for gpt-4.1-mini")
	}

	if unknown := cfg.GetModelPricing("no-such-model"); unknown.Standard.Input != 0 {
		t.Error("expected zero pricing for unknown model")
	}
}

func TestLoad_WebOverrides(t *testing.T) {
	t.Setenv("WEB_HOST", "127.0.0.1")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://booth.example.com, ,https://desk.example.com")

	cfg := Load()

	if cfg.Web.Host != "127.0.0.1" || cfg.Web.Port != 9090 {
		t.Errorf("expected 127.0.0.1:9090, got %s:%d", cfg.Web.Host, cfg.Web.Port)
	}
	if len(cfg.Web.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %v", cfg.Web.AllowedOrigins)
	}
}

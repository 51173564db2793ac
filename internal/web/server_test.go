package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	cameramock "github.com/kozaktomas/marathon-booth/internal/camera/mock"
	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/database/mock"
)

func newTestServer(t *testing.T, password string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := blobstore.NewLocalStore(dir, "")
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}
	cfg := &config.Config{
		Capture: config.CaptureConfig{CountdownTicks: 1, TickInterval: time.Millisecond},
		Web: config.WebConfig{
			StaffPassword: password,
			SessionSecret: "test-secret",
			RegisterRate:  60,
			RegisterBurst: 3,
		},
	}
	s := NewServer(cfg, 0, "127.0.0.1", Deps{
		Store:  mock.NewMockRunnerStore(),
		Blobs:  blobs,
		Camera: cameramock.NewMockProvider([]byte("frame"), "cam:front"),
	})
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, dir
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestServer_PublicRoutes(t *testing.T) {
	s, _ := newTestServer(t, "letmein")

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/messages", http.StatusOK},
		{http.MethodGet, "/api/v1/messages/ja", http.StatusOK},
		{http.MethodGet, "/api/v1/auth/status", http.StatusOK},
		{http.MethodGet, "/api/v1/runners/00001", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/booth/front-desk", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			recorder := serve(s, httptest.NewRequest(tt.method, tt.path, nil))
			if recorder.Code != tt.status {
				t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.status, recorder.Code)
			}
		})
	}
}

func TestServer_StaffRoutesRequireLogin(t *testing.T) {
	s, _ := newTestServer(t, "letmein")

	recorder := serve(s, httptest.NewRequest(http.MethodPost, "/api/v1/booth/sessions", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without login, got %d", recorder.Code)
	}

	recorder = serve(s, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password": "letmein"}`)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var login struct {
		SessionID string `json:"session_id"`
	}
	json.Unmarshal(recorder.Body.Bytes(), &login)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/booth/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+login.SessionID)
	recorder = serve(s, req)
	if recorder.Code != http.StatusCreated {
		t.Errorf("expected 201 with staff session, got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/runners", nil)
	req.Header.Set("Authorization", "Bearer "+login.SessionID)
	recorder = serve(s, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 for runner list, got %d", recorder.Code)
	}
}

func TestServer_OpenStaffRoutesWithoutPassword(t *testing.T) {
	s, _ := newTestServer(t, "")

	recorder := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/runners", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("staff routes should be open without a password, got %d", recorder.Code)
	}
}

func TestServer_RegistrationRateLimit(t *testing.T) {
	s, _ := newTestServer(t, "")

	body := `{"nickname": "Taro", "language": "en", "targetTime": "033000", "messageNumber": 1}`
	codes := make([]int, 0, 4)
	for range 4 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/runners", bytes.NewBufferString(body))
		req.RemoteAddr = "203.0.113.7:4000"
		codes = append(codes, serve(s, req).Code)
	}

	for i, code := range codes[:3] {
		if code != http.StatusCreated {
			t.Errorf("request %d: expected 201, got %d", i+1, code)
		}
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", codes[3])
	}
}

func TestServer_ServesLocalPhotos(t *testing.T) {
	s, dir := newTestServer(t, "")
	if err := os.WriteFile(filepath.Join(dir, "01234_1.jpg"), []byte("jpeg"), 0o600); err != nil {
		t.Fatalf("failed to write photo: %v", err)
	}

	recorder := serve(s, httptest.NewRequest(http.MethodGet, "/photos/01234_1.jpg", nil))
	if recorder.Code != http.StatusOK || recorder.Body.String() != "jpeg" {
		t.Errorf("expected stored photo, got %d %q", recorder.Code, recorder.Body.String())
	}

	recorder = serve(s, httptest.NewRequest(http.MethodGet, "/photos/", nil))
	if recorder.Code == http.StatusOK {
		t.Error("directory listing must not be served")
	}
}

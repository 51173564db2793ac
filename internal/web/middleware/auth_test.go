package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSessionManager(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()
	if sm.sessions == nil {
		t.Error("sessions map is nil")
	}
	if string(sm.secret) != "test-secret" {
		t.Errorf("secret = %q, want test-secret", sm.secret)
	}
}

func TestNewSessionManager_RandomSecret(t *testing.T) {
	a := NewSessionManager("")
	b := NewSessionManager("")
	defer a.Stop()
	defer b.Stop()

	if len(a.secret) != 32 {
		t.Fatalf("expected 32 byte secret, got %d", len(a.secret))
	}
	if a.signData("x") == b.signData("x") {
		t.Error("two managers without a secret must not share signatures")
	}
}

func TestSessionManager_CreateAndGet(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	session, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session expires in the past")
	}

	if sm.GetSession(session.ID) == nil {
		t.Error("GetSession() returned nil for existing session")
	}
	if sm.GetSession("nonexistent-id") != nil {
		t.Error("GetSession() should return nil for unknown session")
	}

	sm.DeleteSession(session.ID)
	if sm.GetSession(session.ID) != nil {
		t.Error("session should be gone after DeleteSession")
	}
}

func TestSessionManager_Expired(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	session, _ := sm.CreateSession()
	sm.mu.Lock()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	sm.mu.Unlock()

	if sm.GetSession(session.ID) != nil {
		t.Error("expired session must not be returned")
	}

	sm.removeExpired()
	sm.mu.RLock()
	_, still := sm.sessions[session.ID]
	sm.mu.RUnlock()
	if still {
		t.Error("removeExpired should drop expired sessions")
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	session, _ := sm.CreateSession()
	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, httptest.NewRequest(http.MethodPost, "/", nil), session)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if !cookies[0].HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if cookies[0].Secure {
		t.Error("cookie should not be Secure on plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if got := sm.GetSessionFromRequest(req); got == nil || got.ID != session.ID {
		t.Errorf("expected session from cookie, got %v", got)
	}
}

func TestSessionManager_TamperedCookie(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	session, _ := sm.CreateSession()
	tests := []struct {
		name  string
		value string
	}{
		{"bad signature", session.ID + ".invalid"},
		{"no signature", session.ID},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tt.value})
			if sm.GetSessionFromRequest(req) != nil {
				t.Error("tampered cookie must not authenticate")
			}
		})
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	session, _ := sm.CreateSession()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	if sm.GetSessionFromRequest(req) == nil {
		t.Error("expected session from bearer token")
	}

	req.Header.Set("Authorization", "Basic "+session.ID)
	if sm.GetSessionFromRequest(req) != nil {
		t.Error("non-bearer authorization must be ignored")
	}
}

func TestRequireStaff(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	var gotSession *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("rejects anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireStaff(sm, true)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Error("expected WWW-Authenticate challenge")
		}
	})

	t.Run("renews aging session", func(t *testing.T) {
		session, _ := sm.CreateSession()
		sm.mu.Lock()
		sm.sessions[session.ID] = &Session{ID: session.ID, CreatedAt: session.CreatedAt, ExpiresAt: time.Now().Add(time.Minute)}
		sm.mu.Unlock()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()
		RequireStaff(sm, true)(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(rec.Result().Cookies()) != 1 {
			t.Error("expected a refreshed session cookie")
		}
		if gotSession == nil || time.Until(gotSession.ExpiresAt) < time.Hour {
			t.Error("expected the renewed session in the request context")
		}
	})

	t.Run("accepts session", func(t *testing.T) {
		session, _ := sm.CreateSession()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()
		RequireStaff(sm, true)(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if gotSession == nil || gotSession.ID != session.ID {
			t.Error("session should be stored in the request context")
		}
	})

	t.Run("disabled passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireStaff(sm, false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}

func TestSessionContext(t *testing.T) {
	if GetSessionFromContext(context.Background()) != nil {
		t.Error("empty context should have no session")
	}
	s := &Session{ID: "abc"}
	if got := GetSessionFromContext(SetSessionInContext(context.Background(), s)); got != s {
		t.Error("expected session back from context")
	}
}

func TestSessionManager_Renew(t *testing.T) {
	sm := NewSessionManager("test-secret")
	defer sm.Stop()

	fresh, _ := sm.CreateSession()
	if sm.Renew(fresh) != nil {
		t.Error("fresh session must not be renewed")
	}

	aging := &Session{ID: fresh.ID, CreatedAt: fresh.CreatedAt, ExpiresAt: time.Now().Add(time.Minute)}
	sm.mu.Lock()
	sm.sessions[fresh.ID] = aging
	sm.mu.Unlock()

	renewed := sm.Renew(aging)
	if renewed == nil {
		t.Fatal("aging session should be renewed")
	}
	if renewed == aging || !renewed.ExpiresAt.After(aging.ExpiresAt) {
		t.Error("renewal should store a new session with a later expiry")
	}
	if got := sm.GetSession(fresh.ID); got != renewed {
		t.Error("GetSession should return the renewed session")
	}

	sm.DeleteSession(fresh.ID)
	if sm.Renew(aging) != nil {
		t.Error("deleted session must not be renewed")
	}
}

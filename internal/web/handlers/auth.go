package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/web/middleware"
)

// AuthHandler handles staff login endpoints
type AuthHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, sm *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		config:         cfg,
		sessionManager: sm,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Login exchanges the staff password for a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.config.Web.StaffPassword == "" {
		respondError(w, http.StatusNotFound, "staff login is disabled")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "password is required")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.config.Web.StaffPassword)) != 1 {
		log.Printf("Failed staff login from %s", sanitizeForLog(r.RemoteAddr))
		respondJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Error:   "invalid credentials",
		})
		return
	}

	session, err := h.sessionManager.CreateSession()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.sessionManager.SetSessionCookie(w, r, session)

	respondJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout ends the staff session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessionManager.GetSessionFromRequest(r); session != nil {
		h.sessionManager.DeleteSession(session.ID)
	}

	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse represents the auth status response
type StatusResponse struct {
	// Enabled is false when no staff password is configured and staff routes are open.
	Enabled       bool   `json:"enabled"`
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// Status reports whether the caller holds a staff session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	enabled := h.config.Web.StaffPassword != ""
	if !enabled {
		respondJSON(w, http.StatusOK, StatusResponse{Enabled: false, Authenticated: true})
		return
	}

	session := h.sessionManager.GetSessionFromRequest(r)
	if session == nil {
		respondJSON(w, http.StatusOK, StatusResponse{Enabled: true, Authenticated: false})
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Enabled:       true,
		Authenticated: true,
		ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

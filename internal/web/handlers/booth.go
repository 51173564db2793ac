package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/capture"
	"github.com/kozaktomas/marathon-booth/internal/web/middleware"
)

// sseKeepAlive is how often an idle event stream gets a comment line.
const sseKeepAlive = 15 * time.Second

// BoothHandler exposes photo booth sessions over HTTP
type BoothHandler struct {
	manager *capture.Manager
}

// NewBoothHandler creates a new booth handler
func NewBoothHandler(manager *capture.Manager) *BoothHandler {
	return &BoothHandler{manager: manager}
}

type boothErrorResponse struct {
	Error   string        `json:"error"`
	Session *capture.View `json:"session,omitempty"`
}

// boothStatus maps a booth operation error to an HTTP status.
func boothStatus(err error) int {
	switch {
	case errors.Is(err, capture.ErrEmptyRunnerID), errors.Is(err, camera.ErrUnknownDevice):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrLookupNotFound):
		return http.StatusNotFound
	case errors.Is(err, camera.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, capture.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, capture.ErrLookupTransport),
		errors.Is(err, capture.ErrAnalysisFailed),
		errors.Is(err, capture.ErrPublishFailed):
		return http.StatusBadGateway
	case errors.Is(err, camera.ErrDeviceInit), errors.Is(err, capture.ErrPublishUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, capture.ErrClosed):
		return http.StatusGone
	case errors.Is(err, capture.ErrInvalidTransition),
		errors.Is(err, capture.ErrBusy),
		errors.Is(err, capture.ErrCameraNotReady),
		errors.Is(err, capture.ErrInterrupted),
		errors.Is(err, capture.ErrNoStill):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondBoothError(w http.ResponseWriter, s *capture.Session, err error) {
	status := boothStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Booth %s: %v", s.ID(), err)
	}
	view := s.View()
	respondJSON(w, status, boothErrorResponse{Error: err.Error(), Session: &view})
}

func (h *BoothHandler) session(w http.ResponseWriter, r *http.Request) (*capture.Session, bool) {
	s := h.manager.Get(chi.URLParam(r, "id"))
	if s == nil {
		respondError(w, http.StatusNotFound, "booth session not found")
		return nil, false
	}
	return s, true
}

// Create opens a new booth session in Search.
func (h *BoothHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	log.Printf("Booth session %s opened by %s", s.ID(), staffLabel(r))
	respondJSON(w, http.StatusCreated, s.View())
}

// staffLabel names the staff login behind r for the log, without leaking the
// full session token.
func staffLabel(r *http.Request) string {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		return "open booth"
	}
	if len(session.ID) > 8 {
		return "staff " + session.ID[:8]
	}
	return "staff " + session.ID
}

// Get returns the session view.
func (h *BoothHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// Events streams state changes, countdown ticks and notices until the client
// disconnects or the session closes.
func (h *BoothHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := setupSSEConnection(w)
	if !ok {
		return
	}

	eventCh := s.AddListener()
	defer s.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, capture.EventState, s.View())

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if event.Type == capture.EventClosed {
				return
			}
		}
	}
}

type searchRequest struct {
	RunnerID string `json:"runnerId"`
}

// Search looks a runner up by ID.
func (h *BoothHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if _, err := s.Search(r.Context(), req.RunnerID); err != nil {
		respondBoothError(w, s, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// Devices lists the cameras available to the session.
func (h *BoothHandler) Devices(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	devices, err := s.Devices(r.Context())
	if err != nil {
		respondBoothError(w, s, err)
		return
	}
	if devices == nil {
		devices = []camera.Device{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"devices":  devices,
		"deviceId": s.View().DeviceID,
	})
}

type openCameraRequest struct {
	DeviceID string `json:"deviceId"`
}

// OpenCamera selects an optional device and acquires it.
func (h *BoothHandler) OpenCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req openCameraRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.DeviceID != "" {
		if err := s.SelectDevice(req.DeviceID); err != nil {
			respondBoothError(w, s, err)
			return
		}
	}
	if err := s.OpenCamera(r.Context()); err != nil {
		respondBoothError(w, s, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// StopCamera releases the camera and returns to Search.
func (h *BoothHandler) StopCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.StopCamera()
	respondJSON(w, http.StatusOK, s.View())
}

// Capture starts the countdown. The outcome arrives through events.
func (h *BoothHandler) Capture(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.StartCapture(r.Context()); err != nil {
		respondBoothError(w, s, err)
		return
	}
	respondJSON(w, http.StatusAccepted, s.View())
}

// Still returns the captured frame.
func (h *BoothHandler) Still(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	still := s.Still()
	if still == nil {
		respondError(w, http.StatusNotFound, "no still captured")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(still)
}

// Retake discards the still and reopens the camera.
func (h *BoothHandler) Retake(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Retake(r.Context()); err != nil {
		respondBoothError(w, s, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// NewSearch resets the session for the next runner.
func (h *BoothHandler) NewSearch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.NewSearch()
	respondJSON(w, http.StatusOK, s.View())
}

// Publish uploads the still and attaches it to the runner record.
func (h *BoothHandler) Publish(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	url, err := s.Publish(r.Context())
	if err != nil {
		respondBoothError(w, s, err)
		return
	}
	log.Printf("Booth %s: published photo for runner %s", s.ID(), s.View().RunnerID)
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     url,
		"session": s.View(),
	})
}

// Delete closes the session and releases its camera.
func (h *BoothHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Delete(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "booth session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

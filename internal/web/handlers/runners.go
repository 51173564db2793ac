package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/marathon-booth/internal/constants"
	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/registration"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// RunnersHandler handles direct runner record endpoints
type RunnersHandler struct {
	store   database.RunnerWriter
	catalog *messages.Catalog
	rng     runner.IntSource
}

// NewRunnersHandler creates a new runners handler. A nil rng uses the process-wide source.
func NewRunnersHandler(store database.RunnerWriter, catalog *messages.Catalog, rng runner.IntSource) *RunnersHandler {
	if rng == nil {
		rng = runner.DefaultSource
	}
	return &RunnersHandler{store: store, catalog: catalog, rng: rng}
}

// createRunnerRequest is a complete registration in one request. Phrases are
// drawn server-side unless both are supplied.
type createRunnerRequest struct {
	Nickname         string `json:"nickname"`
	Language         string `json:"language"`
	TargetTime       string `json:"targetTime"`
	TargetTimeNumber int    `json:"targetTimeNumber"`
	MessageNumber    int    `json:"messageNumber"`
	UpperPhrase      string `json:"upperPhrase"`
	LowerPhrase      string `json:"lowerPhrase"`
}

type validationResponse struct {
	Error  string                          `json:"error"`
	Fields []*registration.ValidationError `json:"fields,omitempty"`
}

type createRunnerResponse struct {
	Success  bool           `json:"success"`
	RunnerID string         `json:"runnerId"`
	Record   *runner.Record `json:"record"`
}

// Create validates and stores a registration, returning the assigned runner ID.
func (h *RunnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRunnerRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	// A target time given as a label (or nothing) falls back to the bracket number.
	form := registration.Form{
		Nickname:      req.Nickname,
		Language:      req.Language,
		Bracket:       req.TargetTimeNumber,
		MessageNumber: req.MessageNumber,
	}
	if _, err := runner.ParseTargetTime(req.TargetTime); err == nil || req.TargetTimeNumber == 0 {
		form.TargetTime = req.TargetTime
	}

	res, err := registration.Resolve(h.catalog, form, h.rng)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "invalid registration",
			Fields: registration.FieldErrors(err),
		})
		return
	}
	if req.UpperPhrase != "" && req.LowerPhrase != "" {
		res.Phrases = messages.Phrases{Upper: req.UpperPhrase, Lower: req.LowerPhrase}
	}

	rec, err := h.store.Create(r.Context(), res.NewRunner())
	if err != nil {
		log.Printf("Failed to create runner: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrIDSpaceExhausted) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, "failed to save registration")
		return
	}

	respondJSON(w, http.StatusCreated, createRunnerResponse{Success: true, RunnerID: rec.RunnerID, Record: rec})
}

// Get returns one runner record.
func (h *RunnersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !runner.ValidID(id) {
		respondError(w, http.StatusBadRequest, "invalid runner ID")
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get runner %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch runner")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "runner not found")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

type listRunnersResponse struct {
	Runners []runner.Record `json:"runners"`
	Total   int             `json:"total"`
}

// List returns the latest registrations, newest first.
func (h *RunnersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := database.DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, constants.MaxRunnerListLimit)
	}

	runners, err := h.store.List(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list runners: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list runners")
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count runners: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list runners")
		return
	}
	if runners == nil {
		runners = []runner.Record{}
	}

	respondJSON(w, http.StatusOK, listRunnersResponse{Runners: runners, Total: total})
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/registration"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// draft is a registration flow held between requests.
type draft struct {
	flow       *registration.Flow
	lastActive time.Time
}

// DraftManager keeps registration flows keyed by draft ID.
type DraftManager struct {
	catalog *messages.Catalog
	writer  registration.Writer
	rng     runner.IntSource

	drafts map[string]*draft
	mu     sync.Mutex
}

// NewDraftManager creates a new draft manager
func NewDraftManager(catalog *messages.Catalog, writer registration.Writer, rng runner.IntSource) *DraftManager {
	return &DraftManager{
		catalog: catalog,
		writer:  writer,
		rng:     rng,
		drafts:  make(map[string]*draft),
	}
}

// Create starts a new flow in Input.
func (m *DraftManager) Create() (string, *registration.Flow) {
	id := uuid.NewString()
	flow := registration.NewFlow(m.catalog, m.writer, m.rng)
	m.mu.Lock()
	m.drafts[id] = &draft{flow: flow, lastActive: time.Now()}
	m.mu.Unlock()
	return id, flow
}

// Get returns a flow and marks it active, or nil.
func (m *DraftManager) Get(id string) *registration.Flow {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil
	}
	d.lastActive = time.Now()
	return d.flow
}

// Len returns the number of drafts.
func (m *DraftManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

// Sweep drops drafts idle for longer than ttl and returns how many it dropped.
func (m *DraftManager) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, d := range m.drafts {
		if d.lastActive.Before(cutoff) {
			delete(m.drafts, id)
			n++
		}
	}
	return n
}

// RegistrationsHandler drives registration flows over HTTP
type RegistrationsHandler struct {
	drafts *DraftManager
}

// NewRegistrationsHandler creates a new registrations handler
func NewRegistrationsHandler(drafts *DraftManager) *RegistrationsHandler {
	return &RegistrationsHandler{drafts: drafts}
}

type draftResponse struct {
	ID string `json:"id"`
	registration.View
	Error string `json:"error,omitempty"`
}

func respondDraft(w http.ResponseWriter, status int, id string, flow *registration.Flow, err error) {
	resp := draftResponse{ID: id, View: flow.View()}
	if err != nil {
		resp.Error = err.Error()
	}
	respondJSON(w, status, resp)
}

// flowStatus maps a flow error to an HTTP status.
func flowStatus(err error) int {
	switch {
	case errors.Is(err, registration.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, registration.ErrSubmitFailed):
		return http.StatusBadGateway
	case len(registration.FieldErrors(err)) > 0:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *RegistrationsHandler) lookup(w http.ResponseWriter, r *http.Request) (string, *registration.Flow, bool) {
	id := chi.URLParam(r, "id")
	flow := h.drafts.Get(id)
	if flow == nil {
		respondError(w, http.StatusNotFound, "registration not found")
		return "", nil, false
	}
	return id, flow, true
}

// Create starts a draft and confirms the submitted form. A validation failure
// keeps the draft in Input and answers 422 with the field errors.
func (h *RegistrationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form registration.Form
	if err := decodeJSON(w, r, &form, false); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id, flow := h.drafts.Create()
	if err := flow.Confirm(form); err != nil {
		respondDraft(w, flowStatus(err), id, flow, err)
		return
	}
	respondDraft(w, http.StatusCreated, id, flow, nil)
}

// Get returns the draft view.
func (h *RegistrationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondDraft(w, http.StatusOK, id, flow, nil)
}

// Confirm validates a (re-)entered form on a draft in Input.
func (h *RegistrationsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var form registration.Form
	if err := decodeJSON(w, r, &form, false); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := flow.Confirm(form); err != nil {
		respondDraft(w, flowStatus(err), id, flow, err)
		return
	}
	respondDraft(w, http.StatusOK, id, flow, nil)
}

// Edit returns a confirmed draft to Input.
func (h *RegistrationsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := flow.Edit(); err != nil {
		respondDraft(w, flowStatus(err), id, flow, err)
		return
	}
	respondDraft(w, http.StatusOK, id, flow, nil)
}

// Submit stores a confirmed draft and returns the assigned runner ID.
func (h *RegistrationsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := h.lookup(w, r)
	if !ok {
		return
	}
	rec, err := flow.Submit(r.Context())
	if err != nil {
		if !errors.Is(err, registration.ErrInvalidTransition) {
			log.Printf("Registration %s: submit failed: %v", id, err)
		}
		respondDraft(w, flowStatus(err), id, flow, err)
		return
	}
	log.Printf("Registered runner %s (%s)", rec.RunnerID, sanitizeForLog(rec.Nickname))
	respondDraft(w, http.StatusOK, id, flow, nil)
}

// Restart clears a draft back to an empty Input.
func (h *RegistrationsHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, flow, ok := h.lookup(w, r)
	if !ok {
		return
	}
	flow.StartOver()
	respondDraft(w, http.StatusOK, id, flow, nil)
}

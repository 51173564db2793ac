package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/marathon-booth/internal/messages"
)

// MessagesHandler serves the message tables used to build the registration form
type MessagesHandler struct {
	catalog *messages.Catalog
}

// NewMessagesHandler creates a new messages handler
func NewMessagesHandler(catalog *messages.Catalog) *MessagesHandler {
	return &MessagesHandler{catalog: catalog}
}

type localesResponse struct {
	Locales   []messages.Locale `json:"locales"`
	Preferred messages.Locale   `json:"preferred"`
}

// Locales lists the available locales and the best match for Accept-Language.
func (h *MessagesHandler) Locales(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, localesResponse{
		Locales:   h.catalog.Locales(),
		Preferred: h.catalog.Match(r.Header.Get("Accept-Language")),
	})
}

// Table returns the message table for one locale.
func (h *MessagesHandler) Table(w http.ResponseWriter, r *http.Request) {
	locale := messages.Locale(chi.URLParam(r, "locale"))
	table, ok := h.catalog.Table(locale)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown locale")
		return
	}
	respondJSON(w, http.StatusOK, table)
}

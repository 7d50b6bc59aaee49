package handlers

import (
	"net/http"
	"strconv"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/service"
	"github.com/go-chi/chi/v5"
)

// EntryHandler serves the fuel entry endpoints.
type EntryHandler struct {
	entries *service.EntryService
}

func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

type entriesResponse struct {
	Entries []models.FuelEntry `json:"entries"`
}

type ignoreRequest struct {
	IsIgnored *bool `json:"isIgnored"`
}

// List handles GET /api/entries?page=&limit=
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.entries.List(r.Context(), id, page, limit)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Create handles POST /api/entries
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var in models.EntryInput
	if err := readJSON(w, r, &in); err != nil {
		apperr.Write(w, err)
		return
	}

	created, err := h.entries.Create(r.Context(), id, in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entriesResponse{Entries: created})
}

// Get handles GET /api/entries/{id}
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	entry, err := h.entries.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/entries/{id}
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var in models.EntryInput
	if err := readJSON(w, r, &in); err != nil {
		apperr.Write(w, err)
		return
	}

	updated, err := h.entries.Update(r.Context(), id, chi.URLParam(r, "id"), in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: updated})
}

// SetIgnored handles PATCH /api/entries/{id}/ignore
func (h *EntryHandler) SetIgnored(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req ignoreRequest
	if err := readJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	if req.IsIgnored == nil {
		apperr.Write(w, apperr.InvalidArgument("isIgnored is required"))
		return
	}

	entry, err := h.entries.SetIgnored(r.Context(), id, chi.URLParam(r, "id"), *req.IsIgnored)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/entries/{id}
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

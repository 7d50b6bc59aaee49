package handlers

import (
	"net/http"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/models"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/service"
	"github.com/go-chi/chi/v5"
)

// TruckHandler serves the truck endpoints.
type TruckHandler struct {
	trucks *service.TruckService
}

func NewTruckHandler(trucks *service.TruckService) *TruckHandler {
	return &TruckHandler{trucks: trucks}
}

func (h *TruckHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	trucks, err := h.trucks.List(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trucks)
}

func (h *TruckHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var in models.TruckInput
	if err := readJSON(w, r, &in); err != nil {
		apperr.Write(w, err)
		return
	}
	truck, err := h.trucks.Add(r.Context(), id, in)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, truck)
}

func (h *TruckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.trucks.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		apperr.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/service"
)

// DashboardHandler serves the dashboard summary.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	d, err := h.dashboard.Get(r.Context(), id)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

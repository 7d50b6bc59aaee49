package handlers

import (
	"net/http"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/receipt"
)

// ReceiptHandler serves receipt scanning.
type ReceiptHandler struct {
	receipts *receipt.Service
}

func NewReceiptHandler(receipts *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Scan handles POST /api/receipts/scan
func (h *ReceiptHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req receipt.ScanRequest
	if err := readJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}
	result, err := h.receipts.Scan(r.Context(), id, req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/apperr"
	"github.com/Shem717/IFTA-WAY-Rev26/internal/middleware"
)

// maxBodyBytes bounds JSON bodies; a 10MB image is ~13.4MB as base64.
const maxBodyBytes = 15 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperr.InvalidArgument("Failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.InvalidArgument("Invalid JSON")
	}
	return nil
}

// userID returns the caller's ID, writing a 401 when there is none.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.UserID(r.Context())
	if id == "" {
		apperr.Write(w, apperr.Unauthenticated("User context not found"))
		return "", false
	}
	return id, true
}

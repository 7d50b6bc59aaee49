package apperr

import (
	"encoding/json"
	"net/http"
)

type body struct {
	Error detail `json:"error"`
}

type detail struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Write sends err as {"error":{"kind","message"}} with the matching status.
// Internal errors only ever expose their caller-facing message.
func Write(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(kind))
	_ = json.NewEncoder(w).Encode(body{Error: detail{Kind: kind, Message: MessageOf(err)}})
}

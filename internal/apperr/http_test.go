package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) detail {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b.Error
}

func TestWrite(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, InvalidArgument("A valid year and quarter (1-4) are required."))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	got := decodeBody(t, w)
	assert.Equal(t, KindInvalidArgument, got.Kind)
	assert.Equal(t, "A valid year and quarter (1-4) are required.", got.Message)
}

func TestWrite_InternalHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, Internal("Failed to generate report.", errors.New("mongo: socket closed")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	got := decodeBody(t, w)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "Failed to generate report.", got.Message)
	assert.NotContains(t, w.Body.String(), "socket")
}

func TestWrite_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An internal error occurred.", decodeBody(t, w).Message)
}

func TestWrite_ResourceExhausted(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, ResourceExhausted("Rate limit exceeded"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

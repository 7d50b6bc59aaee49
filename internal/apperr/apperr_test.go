package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid argument", InvalidArgument("bad quarter"), KindInvalidArgument},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("entry not found")), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"unauthenticated", Unauthenticated("no caller"), KindUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf_HidesInternalDetail(t *testing.T) {
	err := Internal("Failed to generate report.", errors.New("mongo: connection refused"))
	assert.Equal(t, "Failed to generate report.", MessageOf(err))
	assert.NotContains(t, MessageOf(err), "mongo")

	assert.Equal(t, "An internal error occurred.", MessageOf(errors.New("secret detail")))
}

func TestInternal_Unwraps(t *testing.T) {
	cause := errors.New("cause")
	err := Internal("failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindInvalidArgument))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindAlreadyExists))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindResourceExhausted))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}

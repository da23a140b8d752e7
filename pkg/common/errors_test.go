package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *AppError
		code     int
		sentinel error
	}{
		{"not found", NewNotFoundError("user not found", nil), http.StatusNotFound, ErrNotFound},
		{"transient", NewTransientError("failed to load rentals", cause), http.StatusServiceUnavailable, ErrTransient},
		{"bad request", NewBadRequestError("invalid action type", nil), http.StatusBadRequest, ErrBadRequest},
		{"validation", NewValidationError("user_id is required"), http.StatusBadRequest, ErrValidation},
		{"internal", NewInternalServerError("boom"), http.StatusInternalServerError, ErrInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestNewTransientError_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransientError("failed to load rentals", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransient(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "failed to load rentals")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "plain", NewAppError(http.StatusTeapot, "plain", nil).Error())
	assert.Equal(t, "cause only", (&AppError{Err: errors.New("cause only")}).Error())
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := NewNotFoundError("listing not found", nil)
	wrapped := errors.Join(errors.New("assess"), err)

	assert.True(t, IsNotFound(wrapped))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "not_found", appErr.ErrorCode)
}

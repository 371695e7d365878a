package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{InvalidRequest, http.StatusBadRequest},
		{InvalidState, http.StatusConflict},
		{Conflict, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind, "code", "msg").HTTPStatus())
		})
	}
}

func TestFrom(t *testing.T) {
	t.Run("passes classified errors through", func(t *testing.T) {
		original := NotFoundf("thing_not_found", "thing %d not found", 7)
		got := From(original)
		assert.Same(t, original, got)
	})

	t.Run("unwraps through fmt.Errorf", func(t *testing.T) {
		original := MissingPhoto()
		wrapped := fmt.Errorf("completing task: %w", original)
		got := From(wrapped)
		assert.Equal(t, "missing_photo", got.Code)
		assert.Equal(t, InvalidRequest, got.Kind)
	})

	t.Run("classifies unknown errors as internal", func(t *testing.T) {
		got := From(errors.New("connection reset"))
		assert.Equal(t, Internal, got.Kind)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus())
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := Wrap(Conflict, "already_completed", "task already completed", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "already_completed")
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestDomainConstructors(t *testing.T) {
	assert.Equal(t, "missing_photo", MissingPhoto().Code)
	assert.Equal(t, "missing_notes", MissingNotes().Code)
	assert.Equal(t, "already_completed", AlreadyCompleted().Code)
	assert.Equal(t, "active_transfer_exists", ActiveTransferExists().Code)

	for _, err := range []*Error{AlreadyCompleted(), ActiveTransferExists()} {
		assert.Equal(t, http.StatusConflict, err.HTTPStatus())
	}
}

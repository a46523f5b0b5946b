package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "too long")
	assert.Equal(t, "validation failed: name - too long", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Equal(t, codes.InvalidArgument, err.GRPCStatus().Code())

	noField := NewValidationError("", "bad input")
	assert.Equal(t, "validation failed: bad input", noField.Error())
}

func TestNotFoundError(t *testing.T) {
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
	assert.Equal(t, "user not found: id=7", NewNotFoundError("user", "user not found: id=7").Error())
	assert.Equal(t, http.StatusNotFound, ErrNotFound.HTTPStatus())
	assert.Equal(t, codes.NotFound, ErrNotFound.GRPCStatus().Code())
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to count users", cause)

	assert.Equal(t, "failed to count users: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, codes.Internal, err.GRPCStatus().Code())
	assert.Equal(t, "failed to count users", err.GRPCStatus().Message())
}

func TestHTTPStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: NewValidationError("", "x"), expected: http.StatusBadRequest},
		{name: "not found", err: NewNotFoundError("user", ""), expected: http.StatusNotFound},
		{name: "internal", err: NewInternalError("boom", nil), expected: http.StatusInternalServerError},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NewNotFoundError("user", "")), expected: http.StatusNotFound},
		{name: "untyped", err: errors.New("plain"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatusOf(tt.err))
		})
	}
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrInternal))
	assert.True(t, IsValidation(ErrInvalidArgument))
	assert.False(t, IsValidation(errors.New("plain")))
}

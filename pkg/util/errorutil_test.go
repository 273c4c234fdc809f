package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "domain error", err: NewValidationError("token required", nil), wantCode: "VALIDATION_FAILED", wantStatus: http.StatusBadRequest},
		{name: "wrapped domain error", err: fmt.Errorf("handler: %w", NewUnauthorized("missing")), wantCode: "UNAUTHORIZED", wantStatus: http.StatusUnauthorized},
		{name: "forbidden", err: NewForbidden("insufficient role"), wantCode: "FORBIDDEN", wantStatus: http.StatusForbidden},
		{name: "not found", err: NewNotFound("survey", nil), wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "fiber not found", err: fiber.ErrNotFound, wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "fiber method not allowed", err: fiber.ErrMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED", wantStatus: http.StatusMethodNotAllowed},
		{name: "fiber bad gateway", err: fiber.ErrBadGateway, wantCode: "INTERNAL_ERROR", wantStatus: http.StatusBadGateway},
		{name: "plain error", err: cause, wantCode: "INTERNAL_ERROR", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.Equal(t, tt.wantCode, got.Code)
			require.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}

	require.Nil(t, ToDomainError(nil))
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("redis down")
	err := NewDomainError("PARTIAL_ISSUANCE", "some share links could not be issued", http.StatusInternalServerError, nil).WithCause(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "some share links could not be issued: redis down", err.Error())

	internal := NewInternalError(cause)
	require.ErrorIs(t, internal, cause)
	require.Equal(t, "internal server error", ToDomainError(internal).Message)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/service"
	apperrors "github.com/spec-kit/survey-share/pkg/util"
)

// shareError maps share workflow errors to the HTTP error envelope.
func shareError(err error) error {
	var partial *service.PartialIssueError
	switch {
	case errors.As(err, &partial):
		return apperrors.NewDomainError("PARTIAL_ISSUANCE", "some share links could not be issued", http.StatusInternalServerError, map[string]any{
			"requested": partial.Requested,
			"issued":    len(partial.Issued),
			"links":     personalizedLinks(partial.Issued),
		}).WithCause(partial.Err)
	case errors.Is(err, domain.ErrSurveyNotFound):
		return apperrors.NewDomainError("NOT_FOUND", "Survey not found", http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrInvalidShareRequest):
		return apperrors.NewDomainError("INVALID_SHARE_REQUEST", "Invalid share type or recipients", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrInvalidToken):
		return apperrors.NewDomainError("INVALID_TOKEN", "Invalid or expired token", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrTokenExpired):
		return apperrors.NewDomainError("TOKEN_EXPIRED", "Token expired", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrTokenNotFound):
		return apperrors.NewDomainError("TOKEN_NOT_FOUND", "Token not found", http.StatusBadRequest, nil)
	case errors.Is(err, domain.ErrTokenAlreadyUsed):
		return apperrors.NewDomainError("TOKEN_ALREADY_USED", "Token already used", http.StatusBadRequest, nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

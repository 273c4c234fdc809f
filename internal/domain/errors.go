package domain

import "errors"

var (
	ErrSurveyNotFound          = errors.New("survey not found")
	ErrInvalidShareRequest     = errors.New("invalid share type or recipients")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrTokenExpired            = errors.New("token expired")
	ErrTokenNotFound           = errors.New("token not found")
	ErrTokenAlreadyUsed        = errors.New("token already used")
	ErrStoreUnavailable        = errors.New("share store unavailable")
	ErrRandomSourceUnavailable = errors.New("secure random source unavailable")
	ErrMalformedDigest         = errors.New("malformed secret digest")
)

package usecase

import (
	"errors"

	"github.com/matchpulse/ingest/internal/platform/quota"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrQuotaExhausted aliases the governor sentinel so callers can match on
	// either package without double-wrapping.
	ErrQuotaExhausted = quota.ErrExhausted
)

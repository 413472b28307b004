package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrNameRequired   = errors.New("at least one localized name is required")
	ErrClaimHeld      = errors.New("work name is already being ingested")
	ErrInvalidRequest = errors.New("invalid request")
)

package services

import "errors"

// Sentinel errors returned by the domain services. Handlers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf("%w: ...")
// so errors.Is still matches.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrInsufficientPoints = errors.New("insufficient points")
)

package apperrors

import "errors"

// Sentinel errors for the failure kinds the API reports. Services wrap
// these with %w so handlers can map them to HTTP statuses via errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAuth            = errors.New("authentication failed")
	ErrNotFound        = errors.New("not found")
	ErrGeneration      = errors.New("roadmap generation failed")
	ErrMailUnavailable = errors.New("mail delivery unavailable")
	ErrStore           = errors.New("storage unavailable")
)

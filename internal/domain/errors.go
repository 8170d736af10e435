package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, no infrastructure dependency. Every failure is an
// input-validation failure surfaced before any state is written; there is
// nothing to roll back.

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrNameTaken       = errors.New("account name already in use")
	ErrMissingField    = errors.New("required field missing")

	// Input errors
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount = errors.New("invalid amount")

	// Action errors
	ErrInsufficientScore = errors.New("insufficient score")

	// Snapshot errors
	ErrMalformedSnapshot = errors.New("malformed snapshot data")

	// ErrConfirmationRequired marks a destructive operation invoked without
	// confirmation. The caller decides whether to retry with confirm set.
	ErrConfirmationRequired = errors.New("confirmation required")
)

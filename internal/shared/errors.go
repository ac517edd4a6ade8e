package shared

import "errors"

var (
	// ErrNotFound indicates the referenced resource does not exist or the
	// acting user does not own it. The two cases are intentionally
	// indistinguishable to callers.
	ErrNotFound = errors.New("not found")
	// ErrBusinessRule indicates a domain rule rejected the operation
	// (inactive account, self transfer, unknown transfer target).
	ErrBusinessRule = errors.New("business rule violation")
	// ErrInsufficientBalance indicates the account balance does not cover
	// the requested amount. Kept distinct from ErrBusinessRule so callers
	// can present it separately.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrConcurrencyConflict indicates a concurrent balance mutation
	// aborted the operation; the caller retries the whole operation.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrDuplicate indicates a unique constraint rejected an insert.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed request input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid authentication token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the acting user lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

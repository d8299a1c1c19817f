package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	// ErrDuplicateIdentity: the email is already registered.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrNotFound: the referenced user, note or attachment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrExpiredOTP: the supplied one-time code is missing, stale or wrong.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired code")
	// ErrInvalidToken: the federated identity assertion failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDeliveryFailed: the outbound notification could not be delivered. Transient.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrValidation: the input was syntactically or semantically malformed.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable: the persistence layer failed. Transient.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrForbidden: the caller does not own the referenced resource.
	ErrForbidden = errors.New("forbidden")
)

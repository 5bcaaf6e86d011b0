package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrDispatch marks a push transport failure covering a whole batch.
	// It is absorbed by the submission layer and never surfaced to listing callers.
	ErrDispatch = errors.New("push dispatch failed")
	// ErrStorage marks a persistence failure for one or more notification records.
	ErrStorage = errors.New("notification storage failed")
)

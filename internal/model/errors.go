package model

import "errors"

// Error kinds for domain operations. Services wrap these with context; the
// HTTP layer maps them to status codes with errors.Is.
var (
	// ErrValidation marks requests rejected before touching storage
	// (missing target key, missing required fields, bad category).
	ErrValidation = errors.New("invalid request")

	// ErrNotFound marks lookups that missed (bad id, stale index).
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks ownership violations, such as publishing another
	// user's draft.
	ErrForbidden = errors.New("forbidden")

	// ErrGateway marks upstream failures behind the proxy gateway.
	ErrGateway = errors.New("upstream gateway error")
)

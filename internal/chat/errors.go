package chat

import "errors"

var (
	// ErrValidation — missing required input; nothing was sent or stored.
	ErrValidation = errors.New("validation error")

	// ErrUpstream — the webhook was unreachable or answered non-success.
	ErrUpstream = errors.New("upstream error")

	// ErrPersistence — the store failed to write or read.
	ErrPersistence = errors.New("persistence error")
)

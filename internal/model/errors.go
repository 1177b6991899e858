package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// ErrQuotaExceeded signals a storage write rejected for lack of space.
	// The eviction decorator recovers from it by pruning archived items.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrAIUnavailable covers network and transport failures talking to the
	// categorization gateway.
	ErrAIUnavailable = errors.New("ai backend unavailable")

	// ErrMalformedResponse covers gateway responses that fail schema
	// validation (bad enums, wrong types, missing fields).
	ErrMalformedResponse = errors.New("malformed ai response")
)

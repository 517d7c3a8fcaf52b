package services

import "errors"

// Failure taxonomy surfaced to handlers. Everything else wraps one of these
// or bubbles up as a raw store error (treated as internal).
var (
	// ErrNotFound: referenced user, quest, badge or submission is missing.
	ErrNotFound = errors.New("requested resource not found")

	// ErrConflict: submission was not in the expected pending state at commit
	// time, i.e. it has already been processed.
	ErrConflict = errors.New("submission already processed")

	// ErrDuplicateSubmission: a pending or approved submission already exists
	// for this (user, quest) pair.
	ErrDuplicateSubmission = errors.New("submission already exists for this quest")

	// ErrStoreUnavailable: transient store failure or update contention.
	// Callers may retry the whole operation; services never retry internally.
	ErrStoreUnavailable = errors.New("store unavailable, retry")

	// ErrValidation: request failed field validation.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden: caller lacks the admin flag for an admin operation.
	ErrForbidden = errors.New("admin privileges required")
)

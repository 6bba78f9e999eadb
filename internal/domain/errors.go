package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the record store connection could not
	// be re-established. Callers may retry the whole operation.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrNoContent signals that ingestion produced zero valid blocks.
	ErrNoContent = errors.New("no content extracted")

	// ErrQuestNotFound signals that a referenced quest name is absent.
	ErrQuestNotFound = errors.New("quest not found")

	// ErrNoExercise signals that no exercise is pending for the user, or the
	// submitted exercise token does not match the pending one.
	ErrNoExercise = errors.New("no pending exercise")

	// ErrNotEligible signals that a zone was requested the user's card state
	// does not permit yet.
	ErrNotEligible = errors.New("zone not eligible for this quest")
)

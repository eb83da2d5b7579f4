package models

import "errors"

// Economy errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrUnknownTier       = errors.New("unknown egg tier")
)

// ErrGenerationFailure wraps any failure of the external generators.
var ErrGenerationFailure = errors.New("generation failure")

// Lifecycle guard errors.
var (
	ErrHatchInProgress    = errors.New("another egg is already hatching")
	ErrBreedInProgress    = errors.New("a breed is already in progress")
	ErrParentsNotSelected = errors.New("two distinct parents must be selected")
	ErrNoPendingBreed     = errors.New("no breed awaiting confirmation")
	ErrSlotOutOfRange     = errors.New("breeding slot out of range")
)

// Lookup errors.
var (
	ErrEggNotFound    = errors.New("egg not found")
	ErrAnimalNotFound = errors.New("animal not found")
	ErrUnknownView    = errors.New("unknown view")
)

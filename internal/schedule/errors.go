package schedule

import "errors"

var (
	// ErrEmptyStakeSet is returned when no validator carries positive stake.
	ErrEmptyStakeSet = errors.New("stake set is empty after dropping zero-stake entries")

	// ErrConflictingStake is returned when the same identity appears with
	// two different stake values in one epoch's input.
	ErrConflictingStake = errors.New("validator listed with conflicting stake values")

	// ErrStakeOverflow is returned when the cumulative stake does not fit
	// in a uint64.
	ErrStakeOverflow = errors.New("total stake overflows uint64")

	// ErrZeroSlots is returned for schedule parameters with no slots.
	ErrZeroSlots = errors.New("slots per epoch must be greater than zero")
)

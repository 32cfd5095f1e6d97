package match

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a match does not exist
var ErrNotFound = errors.New("match not found")

// ErrMatchComplete is returned when a play is submitted after the series is decided
var ErrMatchComplete = errors.New("match is complete")

// ErrDuplicatePlay happens if the store already holds a play for the player in the round
var ErrDuplicatePlay = errors.New("play already recorded for this player and round")

// ValidationError is an error that is safe to return in a response
// It is always correctable by the caller
type ValidationError string

func (v ValidationError) Error() string {
	return string(v)
}

// TurnError is returned when someone other than the current player submits a play
type TurnError struct {
	PlayerID    string
	CurrentTurn string
}

func (t *TurnError) Error() string {
	return "not your turn"
}

// StoreError wraps a failure of the persistence layer
type StoreError struct {
	Op  string
	Err error
}

func (s *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", s.Op, s.Err)
}

// Unwrap returns the underlying store error
func (s *StoreError) Unwrap() error {
	return s.Err
}

// InvariantError is a programming error: the match reached a state the rules forbid
// It is never caused by caller input
type InvariantError string

func (i InvariantError) Error() string {
	return "invariant violation: " + string(i)
}

// IsCallerError returns true if err is one of the rejections a caller can correct
func IsCallerError(err error) bool {
	var ve ValidationError
	var te *TurnError
	return errors.As(err, &ve) || errors.As(err, &te) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrMatchComplete)
}

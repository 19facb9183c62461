package clocking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPriorRecord     = errors.New("no prior clock record")
	ErrIllegalTransition = errors.New("illegal clock transition")
	ErrStoreUnavailable  = errors.New("event store unavailable")
	ErrMalformedDuration = errors.New("malformed duration")
)

// NoPriorRecordError is returned when a user without any clock event tries
// anything other than IN.
type NoPriorRecordError struct {
	Proposed Action
}

func (e *NoPriorRecordError) Error() string {
	return "You do not have any previous registration, so the coherent thing is that you sign an entry(`IN`)"
}

func (e *NoPriorRecordError) Is(target error) bool {
	return target == ErrNoPriorRecord
}

// IllegalTransitionError carries the last action and what the user may clock
// instead, so callers can explain the rejection.
type IllegalTransitionError struct {
	Last     Action
	Proposed Action
	Allowed  []Action
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("Your last clock action was `%s`, so you can not `%s` clock action", e.Last.Upper(), e.Proposed.Upper())
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// AllowedList renders the allowed actions as "`PAUSE`, `OUT`".
func (e *IllegalTransitionError) AllowedList() string {
	names := make([]string, 0, len(e.Allowed))
	for _, a := range e.Allowed {
		names = append(names, "`"+a.Upper()+"`")
	}
	return strings.Join(names, ", ")
}

// IsValidationError reports whether err is an expected user mistake rather
// than a system failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoPriorRecord) || errors.Is(err, ErrIllegalTransition)
}

// StoreError wraps a failure of the event store backend.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("event store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

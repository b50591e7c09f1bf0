package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every failure returned by a Session matches exactly one of
// these through errors.Is. Validation, conflict and capacity failures are
// reported before any state change or store call.
var (
	ErrValidation = errors.New("roster: validation failed")
	ErrConflict   = errors.New("roster: conflict")
	ErrCapacity   = errors.New("roster: capacity exceeded")
	ErrStore      = errors.New("roster: store failure")
)

var (
	ErrInvalidDate     = classify(ErrValidation, "roster: invalid date")
	ErrInvalidName     = classify(ErrValidation, "roster: invalid name")
	ErrUnknownRow      = classify(ErrValidation, "roster: unknown row")
	ErrUnknownRole     = classify(ErrValidation, "roster: unknown role")
	ErrIndexOutOfRange = classify(ErrValidation, "roster: index out of range")
	ErrNoBaselineRow   = classify(ErrValidation, "roster: no row to extend from")
	ErrEmptyRoster     = classify(ErrValidation, "roster: roster is empty")
	ErrUnknownGroup    = classify(ErrValidation, "roster: unknown display group")
	ErrUngroupedLocked = classify(ErrValidation, "roster: ungrouped group cannot be deleted or renamed")

	ErrPersonNotAssigned = classify(ErrValidation, "roster: person not assigned")
	ErrInfoColumn        = classify(ErrValidation, "roster: info column holds no people")
	ErrSameRow           = classify(ErrValidation, "roster: swap needs two different rows")

	ErrDuplicateAssignment = classify(ErrConflict, "roster: person already assigned")
	ErrDuplicateRole       = classify(ErrConflict, "roster: role already exists")

	ErrCapacityExceeded = classify(ErrCapacity, "roster: row limit reached")
)

type classedError struct {
	class error
	msg   string
}

func classify(class error, msg string) error {
	return &classedError{class: class, msg: msg}
}

func (e *classedError) Error() string { return e.msg }

func (e *classedError) Unwrap() error { return e.class }

// StoreError reports a failed store call. Inconsistent is set when other
// writes of the same operation may already have landed, leaving the store and
// the session out of step until the operator reloads or retries.
type StoreError struct {
	Op           string
	Keys         []string
	Inconsistent bool
	Err          error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "roster: store %s", e.Op)
	if len(e.Keys) > 0 {
		fmt.Fprintf(&b, " keys=%s", strings.Join(e.Keys, ","))
	}
	if e.Inconsistent {
		b.WriteString(" (partial write, store and session may disagree)")
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes every StoreError match ErrStore.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func isAuditFailure(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && strings.HasPrefix(storeErr.Op, "audit.")
}

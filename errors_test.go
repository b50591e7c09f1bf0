package roster

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorClasses(t *testing.T) {
	cases := []struct {
		err   error
		class error
	}{
		{ErrInvalidDate, ErrValidation},
		{ErrUngroupedLocked, ErrValidation},
		{ErrInfoColumn, ErrValidation},
		{ErrSameRow, ErrValidation},
		{ErrDuplicateAssignment, ErrConflict},
		{ErrDuplicateRole, ErrConflict},
		{ErrCapacityExceeded, ErrCapacity},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.class) {
			t.Fatalf("%v: expected class %v", tc.err, tc.class)
		}
		for _, other := range []error{ErrValidation, ErrConflict, ErrCapacity, ErrStore} {
			if other != tc.class && errors.Is(tc.err, other) {
				t.Fatalf("%v: unexpectedly matches %v", tc.err, other)
			}
		}
	}
}

func TestStoreErrorMatchesStoreClass(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StoreError{Op: "put", Keys: []string{"2026.01.04"}, Inconsistent: true, Err: cause})
	if !errors.Is(err, ErrStore) || !errors.Is(err, cause) {
		t.Fatalf("expected store class and cause, got %v", err)
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || !storeErr.Inconsistent {
		t.Fatalf("expected StoreError via errors.As")
	}
	if !strings.Contains(err.Error(), "keys=2026.01.04") || !strings.Contains(err.Error(), "partial write") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

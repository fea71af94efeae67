package reactive

import "errors"

var (
	// ErrRootState is returned when adding or deleting a field on an
	// object used as component root state.
	ErrRootState = errors.New("reactive: cannot add or delete fields on root state")

	// ErrFrozen is returned when mutating a frozen container.
	ErrFrozen = errors.New("reactive: container is frozen")

	// ErrNotContainer is returned when Set or Delete targets a value that
	// is not an Object or List, or uses the wrong key type.
	ErrNotContainer = errors.New("reactive: target is not a reactive container")

	// ErrInvalidIndex is returned for a non-integer or negative list index.
	ErrInvalidIndex = errors.New("reactive: invalid list index")
)

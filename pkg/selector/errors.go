package selector

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching of evaluation failures.
var (
	ErrEmptyInput      = errors.New("cannot select the nth element of an empty list")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrBadDirection    = errors.New("direction must be a finite non-zero vector")
)

// EmptyInputError is returned when a ranking selector receives no entities.
type EmptyInputError struct {
	Selector string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Selector, ErrEmptyInput)
}

// Is reports whether target is ErrEmptyInput.
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// IndexOutOfRangeError is returned when a ranking selector's index does not
// address one of the clusters it found.
type IndexOutOfRangeError struct {
	Selector string
	Index    int
	Count    int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: attempted to access index %d of a list with length %d",
		e.Selector, e.Index, e.Count)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

package shift

import (
	"errors"
	"fmt"
)

// ParseError wraps a specific error with the schedule line it occurred on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("shift schedule line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrNoHeader    = errors.New("header row not found")
	ErrMissingDay  = errors.New("day column not found")
	ErrMissingName = errors.New("name column not found")
	ErrShortRecord = errors.New("record shorter than header")
)

package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse error")

	// ErrMissingPrice marks a row with no fill price. Such rows are
	// dropped before they reach the ledger.
	ErrMissingPrice = errors.New("fill price is missing")

	// ErrEmptyInput means a source produced no valid rows at all.
	ErrEmptyInput = errors.New("no valid rows")
)

// ParseError names the field and row that could not be parsed.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: bad %s %q: %v", e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: bad %s %q", e.Row, e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

package trade

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when a Record fails its preconditions.
var ErrInvalidRecord = errors.New("invalid trade record")

// Record is one normalized execution. Records are values and are never
// mutated once built.
type Record struct {
	Instrument string
	Time       time.Time
	IsBuyer    bool
	ReduceOnly bool
	Price      decimal.Decimal
	Quantity   decimal.Decimal

	// Row is the index of the source row this record came from.
	Row int
}

// Direction returns the side this execution pushes a position toward.
func (r Record) Direction() Side {
	return DirectionOf(r.IsBuyer)
}

// Validate checks the invariants the ledger relies on.
func (r Record) Validate() error {
	if r.Instrument == "" {
		return fmt.Errorf("%w: row %d: instrument is required", ErrInvalidRecord, r.Row)
	}
	if r.Time.IsZero() {
		return fmt.Errorf("%w: row %d: time is required", ErrInvalidRecord, r.Row)
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("%w: row %d: price must be positive, got %s", ErrInvalidRecord, r.Row, r.Price)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("%w: row %d: quantity must be positive, got %s", ErrInvalidRecord, r.Row, r.Quantity)
	}
	return nil
}

package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradeledger/trade"
)

var (
	// ErrOrdering is matched by every *OrderingViolation.
	ErrOrdering = errors.New("timestamp regression")

	// ErrInvalidRecord is the trade package sentinel, re-exported so
	// callers of the ledger only need one import.
	ErrInvalidRecord = trade.ErrInvalidRecord
)

// OrderingViolation reports a record whose timestamp is earlier than the
// last one accepted for the same instrument.
type OrderingViolation struct {
	Instrument string
	Row        int
	Previous   time.Time
	Got        time.Time
}

func (e *OrderingViolation) Error() string {
	return fmt.Sprintf("%s: row %d: time %s is before previous %s",
		e.Instrument, e.Row, e.Got.UTC().Format(time.RFC3339Nano), e.Previous.UTC().Format(time.RFC3339Nano))
}

func (e *OrderingViolation) Is(target error) bool {
	return target == ErrOrdering
}

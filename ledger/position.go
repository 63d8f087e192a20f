// ledger/position.go
package ledger

import (
	"fmt"

	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
)

// Position is the open state of one instrument. The zero value is flat.
//
// A Position always satisfies:
//
//	Quantity == 0  <=>  Side == trade.None  <=>  AvgPrice == 0
//	Quantity >= 0
type Position struct {
	Side     trade.Side
	Quantity decimal.Decimal
	AvgPrice decimal.Decimal
}

// Flat returns the zero position.
func Flat() Position {
	return Position{Side: trade.None, Quantity: decimal.Zero, AvgPrice: decimal.Zero}
}

// IsFlat reports whether nothing is held.
func (p Position) IsFlat() bool {
	return p.Side == trade.None
}

// IsOpen reports whether a non-zero quantity is held.
func (p Position) IsOpen() bool {
	return p.Quantity.IsPositive()
}

// Check returns an error if p breaks the position invariants.
func (p Position) Check() error {
	if p.Quantity.IsNegative() {
		return fmt.Errorf("position quantity is negative: %s", p.Quantity)
	}
	qtyZero := p.Quantity.IsZero()
	if qtyZero != (p.Side == trade.None) {
		return fmt.Errorf("position side %s disagrees with quantity %s", p.Side, p.Quantity)
	}
	if qtyZero != p.AvgPrice.IsZero() {
		return fmt.Errorf("position avg price %s disagrees with quantity %s", p.AvgPrice, p.Quantity)
	}
	return nil
}

// String renders the position the way the audit trace shows it,
// e.g. "side=long, qty=6.0000, avg=100.00".
func (p Position) String() string {
	return fmt.Sprintf("side=%s, qty=%s, avg=%s", p.Side, p.Quantity.StringFixed(4), p.AvgPrice.StringFixed(2))
}

package ledger

import (
	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
)

// Kind tags what a trade did to its position.
type Kind int8

const (
	// Open means the trade opened a position or added to one.
	Open Kind = iota
	// Close means the trade offset the current side: a partial close,
	// an exact close, or a flip.
	Close
	// Ignored means a reduce-only trade had nothing to reduce.
	Ignored
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case Ignored:
		return "ignored"
	}
	return "unknown"
}

// Transition is the result of applying one record to a position.
type Transition struct {
	State    Position
	Realized decimal.Decimal
	Kind     Kind

	// Unused is the part of a reduce-only quantity that exceeded the
	// open position. It is dropped, never carried forward.
	Unused decimal.Decimal
}

// Apply is the average-cost transition function. It is pure: pos is not
// modified and the same inputs always give the same Transition.
//
// Apply assumes r has passed Validate.
func Apply(pos Position, r trade.Record) Transition {
	dir := r.Direction()

	if r.ReduceOnly {
		if pos.IsFlat() || pos.Side == dir {
			return Transition{State: pos, Realized: decimal.Zero, Kind: Ignored, Unused: decimal.Zero}
		}
		state, realized := closeAgainst(pos, r.Price, r.Quantity)
		unused := decimal.Zero
		if r.Quantity.GreaterThan(pos.Quantity) {
			unused = r.Quantity.Sub(pos.Quantity)
		}
		return Transition{State: state, Realized: realized, Kind: Close, Unused: unused}
	}

	switch {
	case pos.IsFlat():
		return Transition{
			State:    Position{Side: dir, Quantity: r.Quantity, AvgPrice: r.Price},
			Realized: decimal.Zero,
			Kind:     Open,
			Unused:   decimal.Zero,
		}

	case pos.Side == dir:
		// weight by the pre-trade quantity
		cost := pos.AvgPrice.Mul(pos.Quantity).Add(r.Price.Mul(r.Quantity))
		qty := pos.Quantity.Add(r.Quantity)
		return Transition{
			State:    Position{Side: dir, Quantity: qty, AvgPrice: cost.Div(qty)},
			Realized: decimal.Zero,
			Kind:     Open,
			Unused:   decimal.Zero,
		}
	}

	state, realized := closeAgainst(pos, r.Price, r.Quantity)
	if r.Quantity.GreaterThan(pos.Quantity) {
		state = Position{Side: dir, Quantity: r.Quantity.Sub(pos.Quantity), AvgPrice: r.Price}
	}
	return Transition{State: state, Realized: realized, Kind: Close, Unused: decimal.Zero}
}

// closeAgainst closes up to qty of pos at price. It never opens anything:
// whatever exceeds the open quantity is left to the caller.
func closeAgainst(pos Position, price, qty decimal.Decimal) (Position, decimal.Decimal) {
	closed := decimal.Min(pos.Quantity, qty)

	var realized decimal.Decimal
	if pos.Side == trade.Long {
		realized = price.Sub(pos.AvgPrice).Mul(closed)
	} else {
		realized = pos.AvgPrice.Sub(price).Mul(closed)
	}

	switch pos.Quantity.Cmp(qty) {
	case 1:
		return Position{Side: pos.Side, Quantity: pos.Quantity.Sub(qty), AvgPrice: pos.AvgPrice}, realized
	default:
		return Flat(), realized
	}
}

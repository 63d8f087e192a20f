// metrics/activity.go
package metrics

import (
	"iter"
	"time"

	"github.com/rustyeddy/tradeledger/ledger"
	"github.com/shopspring/decimal"
)

// Interval is a span between two consecutive trades of one instrument
// during which a position was open.
type Interval struct {
	Instrument string
	Start      time.Time
	End        time.Time
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// OpenIntervals walks outcomes once and yields, for every pair of
// consecutive trades on the same instrument, the gap between them when
// the first trade left a non-zero position. Outcomes must be in ledger
// order.
func OpenIntervals(outcomes []ledger.Outcome) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		prev := make(map[string]ledger.Outcome)
		for _, o := range outcomes {
			instr := o.Record.Instrument
			if p, ok := prev[instr]; ok && p.State.IsOpen() {
				if !yield(Interval{Instrument: instr, Start: p.Record.Time, End: o.Record.Time}) {
					return
				}
			}
			prev[instr] = o
		}
	}
}

// Activity summarizes how often and how long an account held positions.
type Activity struct {
	TotalTrades        int
	AvgProfitPerTrade  decimal.Decimal
	HoldingTimeTotal   time.Duration
	AvgHoldingInterval time.Duration

	// Intervals counts the non-zero holding intervals.
	Intervals int

	// TradesPerHour is nil when no time was spent holding.
	TradesPerHour *float64
}

// Compute derives Activity from an outcome trace.
func Compute(outcomes []ledger.Outcome) Activity {
	a := Activity{
		TotalTrades:       len(outcomes),
		AvgProfitPerTrade: decimal.Zero,
	}
	if len(outcomes) == 0 {
		return a
	}

	sum := decimal.Zero
	for _, o := range outcomes {
		sum = sum.Add(o.RealizedPnL)
	}
	a.AvgProfitPerTrade = sum.Div(decimal.NewFromInt(int64(len(outcomes))))

	for iv := range OpenIntervals(outcomes) {
		dur := iv.Duration()
		if dur <= 0 {
			continue
		}
		a.HoldingTimeTotal += dur
		a.Intervals++
	}
	if a.Intervals > 0 {
		a.AvgHoldingInterval = a.HoldingTimeTotal / time.Duration(a.Intervals)
	}
	if a.HoldingTimeTotal > 0 {
		tph := float64(a.TotalTrades) / a.HoldingTimeTotal.Hours()
		a.TradesPerHour = &tph
	}
	return a
}

// pnl/accumulator.go
package pnl

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Accumulator keeps running realized PnL totals per key (an instrument,
// or an account when merging). Totals only ever move by Add; there is no
// reset.
type Accumulator struct {
	totals map[string]decimal.Decimal
	sum    decimal.Decimal
}

func NewAccumulator() *Accumulator {
	return &Accumulator{totals: make(map[string]decimal.Decimal), sum: decimal.Zero}
}

// Add folds realized into key's total and returns the new cumulative
// value for key.
func (a *Accumulator) Add(key string, realized decimal.Decimal) decimal.Decimal {
	cum := a.Get(key).Add(realized)
	a.totals[key] = cum
	a.sum = a.sum.Add(realized)
	return cum
}

// Get returns key's cumulative total, zero if key was never seen.
func (a *Accumulator) Get(key string) decimal.Decimal {
	if v, ok := a.totals[key]; ok {
		return v
	}
	return decimal.Zero
}

// Total returns the sum across every key.
func (a *Accumulator) Total() decimal.Decimal {
	return a.sum
}

// Keys returns the keys seen so far, sorted.
func (a *Accumulator) Keys() []string {
	keys := make([]string, 0, len(a.totals))
	for k := range a.totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge sums several accumulators key by key into a new one.
func Merge(accs ...*Accumulator) *Accumulator {
	out := NewAccumulator()
	for _, a := range accs {
		if a == nil {
			continue
		}
		for _, k := range a.Keys() {
			out.Add(k, a.totals[k])
		}
	}
	return out
}

// Running returns the prefix sums of values:
// out[i] = out[i-1] + values[i].
func Running(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	cum := decimal.Zero
	for i, v := range values {
		cum = cum.Add(v)
		out[i] = cum
	}
	return out
}

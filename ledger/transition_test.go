package ledger

import (
	"testing"
	"time"

	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func buy(price, qty string) trade.Record {
	return trade.Record{Instrument: "BTCUSDT", Time: t0, IsBuyer: true, Price: d(price), Quantity: d(qty)}
}

func sell(price, qty string) trade.Record {
	return trade.Record{Instrument: "BTCUSDT", Time: t0, IsBuyer: false, Price: d(price), Quantity: d(qty)}
}

func reduce(r trade.Record) trade.Record {
	r.ReduceOnly = true
	return r
}

func long(qty, avg string) Position {
	return Position{Side: trade.Long, Quantity: d(qty), AvgPrice: d(avg)}
}

func short(qty, avg string) Position {
	return Position{Side: trade.Short, Quantity: d(qty), AvgPrice: d(avg)}
}

func assertPosition(t *testing.T, want, got Position) {
	t.Helper()
	assert.Equal(t, want.Side, got.Side, "side")
	assert.True(t, want.Quantity.Equal(got.Quantity), "quantity: want %s got %s", want.Quantity, got.Quantity)
	assert.True(t, want.AvgPrice.Equal(got.AvgPrice), "avg price: want %s got %s", want.AvgPrice, got.AvgPrice)
	assert.NoError(t, got.Check())
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pos        Position
		rec        trade.Record
		want       Position
		wantPnL    string
		wantKind   Kind
		wantUnused string
	}{
		{
			name:     "open long from flat",
			pos:      Flat(),
			rec:      buy("100", "10"),
			want:     long("10", "100"),
			wantPnL:  "0",
			wantKind: Open,
		},
		{
			name:     "open short from flat",
			pos:      Flat(),
			rec:      sell("50", "2"),
			want:     short("2", "50"),
			wantPnL:  "0",
			wantKind: Open,
		},
		{
			name:     "same side averaging",
			pos:      long("10", "100"),
			rec:      buy("120", "10"),
			want:     long("20", "110"),
			wantPnL:  "0",
			wantKind: Open,
		},
		{
			name:     "short add averaging",
			pos:      short("1", "200"),
			rec:      sell("100", "3"),
			want:     short("4", "125"),
			wantPnL:  "0",
			wantKind: Open,
		},
		{
			name:     "exact close reduce-only",
			pos:      long("10", "100"),
			rec:      reduce(sell("110", "10")),
			want:     Flat(),
			wantPnL:  "100",
			wantKind: Close,
		},
		{
			name:     "partial close reduce-only",
			pos:      long("10", "100"),
			rec:      reduce(sell("110", "4")),
			want:     long("6", "100"),
			wantPnL:  "40",
			wantKind: Close,
		},
		{
			name:       "reduce-only overflow is clamped",
			pos:        short("3", "110"),
			rec:        reduce(buy("100", "5")),
			want:       Flat(),
			wantPnL:    "30",
			wantKind:   Close,
			wantUnused: "2",
		},
		{
			name:     "flip with overflow",
			pos:      long("5", "100"),
			rec:      sell("110", "8"),
			want:     short("3", "110"),
			wantPnL:  "50",
			wantKind: Close,
		},
		{
			name:     "non-reducing exact close",
			pos:      short("4", "100"),
			rec:      buy("90", "4"),
			want:     Flat(),
			wantPnL:  "40",
			wantKind: Close,
		},
		{
			name:     "non-reducing partial close keeps avg",
			pos:      short("4", "100"),
			rec:      buy("105", "1"),
			want:     short("3", "100"),
			wantPnL:  "-5",
			wantKind: Close,
		},
		{
			name:     "reduce-only on flat is ignored",
			pos:      Flat(),
			rec:      reduce(buy("100", "1")),
			want:     Flat(),
			wantPnL:  "0",
			wantKind: Ignored,
		},
		{
			name:     "reduce-only same side is ignored",
			pos:      long("2", "100"),
			rec:      reduce(buy("150", "1")),
			want:     long("2", "100"),
			wantPnL:  "0",
			wantKind: Ignored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Apply(tt.pos, tt.rec)
			assertPosition(t, tt.want, tr.State)
			assert.True(t, d(tt.wantPnL).Equal(tr.Realized), "pnl: want %s got %s", tt.wantPnL, tr.Realized)
			assert.Equal(t, tt.wantKind, tr.Kind)

			unused := tt.wantUnused
			if unused == "" {
				unused = "0"
			}
			assert.True(t, d(unused).Equal(tr.Unused), "unused: want %s got %s", unused, tr.Unused)
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	pos := long("10", "100")
	_ = Apply(pos, sell("110", "4"))
	assertPosition(t, long("10", "100"), pos)
}

func TestApplyUsesExactQuantityComparison(t *testing.T) {
	t.Parallel()

	// 0.1 + 0.2 is exactly 0.3 in decimal, so this is an exact close.
	tr := Apply(Flat(), buy("10", "0.1"))
	tr = Apply(tr.State, buy("10", "0.2"))
	tr = Apply(tr.State, sell("12", "0.3"))

	assertPosition(t, Flat(), tr.State)
	assert.True(t, d("0.6").Equal(tr.Realized), "got %s", tr.Realized)
}

func TestPositionCheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Flat().Check())
	assert.NoError(t, Position{}.Check())
	assert.NoError(t, long("1", "1").Check())

	assert.Error(t, Position{Side: trade.Long, Quantity: decimal.Zero, AvgPrice: decimal.Zero}.Check())
	assert.Error(t, Position{Side: trade.None, Quantity: d("1"), AvgPrice: d("1")}.Check())
	assert.Error(t, Position{Side: trade.Long, Quantity: d("1"), AvgPrice: decimal.Zero}.Check())
	assert.Error(t, Position{Side: trade.Short, Quantity: d("-1"), AvgPrice: d("1")}.Check())
}

func TestPositionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "side=long, qty=6.0000, avg=100.00", long("6", "100").String())
	assert.Equal(t, "side=none, qty=0.0000, avg=0.00", Flat().String())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "close", Close.String())
	assert.Equal(t, "ignored", Ignored.String())
	require.Equal(t, "unknown", Kind(42).String())
}

package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rustyeddy/tradeledger/ingest"
	"github.com/rustyeddy/tradeledger/internal/obs"
	"github.com/rustyeddy/tradeledger/report"
	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func rec(instr string, offset time.Duration, isBuyer, reduceOnly bool, price, qty int64, row int) trade.Record {
	return trade.Record{
		Instrument: instr,
		Time:       t0.Add(offset),
		IsBuyer:    isBuyer,
		ReduceOnly: reduceOnly,
		Price:      decimal.NewFromInt(price),
		Quantity:   decimal.NewFromInt(qty),
		Row:        row,
	}
}

func TestSplitByInstrument(t *testing.T) {
	t.Parallel()

	groups := SplitByInstrument([]trade.Record{
		rec("ETHUSDT", 0, true, false, 1, 1, 0),
		rec("BTCUSDT", 0, true, false, 1, 1, 1),
		rec("ETHUSDT", 0, false, false, 1, 1, 2),
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "ETHUSDT", groups[0].Instrument)
	assert.Equal(t, []int{0, 2}, []int{groups[0].Records[0].Row, groups[0].Records[1].Row})
	assert.Equal(t, "BTCUSDT", groups[1].Instrument)

	assert.Empty(t, SplitByInstrument(nil))
}

func TestRunnerMixedBatch(t *testing.T) {
	t.Parallel()

	accounts := []Account{
		{
			ID: "good",
			Records: []trade.Record{
				rec("BTCUSDT", 0, true, false, 100, 10, 0),
				rec("ETHUSDT", 30*time.Minute, false, false, 50, 1, 1),
				rec("BTCUSDT", 2*time.Hour, false, true, 110, 10, 2),
			},
		},
		{
			ID:      "dropped",
			Dropped: 2,
			Records: []trade.Record{rec("BTCUSDT", 0, true, false, 100, 1, 0)},
		},
		{
			ID: "regress",
			Records: []trade.Record{
				rec("BTCUSDT", time.Hour, true, false, 100, 1, 0),
				rec("BTCUSDT", 0, false, false, 110, 1, 1),
				rec("ETHUSDT", 0, true, false, 10, 1, 2),
			},
		},
		{ID: "empty", Dropped: 3, Err: ingest.ErrEmptyInput},
		{ID: "broken", Err: errors.New("permission denied")},
	}

	m := obs.New()
	r := &Runner{Workers: 3, Trace: true, RunID: "run-1", Metrics: m}
	got := r.Run(context.Background(), accounts)
	require.Len(t, got, len(accounts))

	for i, a := range accounts {
		assert.Equal(t, a.ID, got[i].AccountID)
		assert.Equal(t, "run-1", got[i].RunID)
	}

	assert.Equal(t, report.StatusOK, got[0].Status)
	assert.True(t, decimal.NewFromInt(100).Equal(got[0].FinalCumulativePnL))
	assert.Equal(t, 3, got[0].TotalTrades)
	assert.Equal(t, 2.0, got[0].HoldingTimeTotal)
	require.NotNil(t, got[0].TradesPerHour)
	assert.Equal(t, 1.5, *got[0].TradesPerHour)
	assert.Len(t, got[0].Trace, 3)

	assert.Equal(t, report.StatusOKDropped, got[1].Status)
	assert.Equal(t, 2, got[1].DroppedRows)
	assert.Nil(t, got[1].TradesPerHour)

	assert.Equal(t, report.StatusPartial, got[2].Status)
	require.Len(t, got[2].Instruments, 2)
	assert.Equal(t, report.StatusFailed, got[2].Instruments[0].Status)
	assert.Contains(t, got[2].Instruments[0].Reason, "row 1")
	assert.Equal(t, 1, got[2].Instruments[0].Trades)
	assert.Equal(t, report.StatusOK, got[2].Instruments[1].Status)
	assert.Equal(t, 1, got[2].TotalTrades)

	assert.Equal(t, report.StatusNoData, got[3].Status)
	assert.Equal(t, 3, got[3].DroppedRows)

	assert.Equal(t, report.StatusFailed, got[4].Status)
	assert.Equal(t, "permission denied", got[4].Reason)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Accounts.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Accounts.WithLabelValues("no_data")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.TradesApplied.WithLabelValues("open")))
}

func TestRunnerMatchesSequential(t *testing.T) {
	t.Parallel()

	var accounts []Account
	for a := 0; a < 8; a++ {
		var recs []trade.Record
		for i := 0; i < 50; i++ {
			instr := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}[i%3]
			recs = append(recs, rec(instr, time.Duration(i)*time.Minute, (i+a)%3 != 0, i%5 == 0, int64(100+i%7), int64(1+i%4), i))
		}
		accounts = append(accounts, Account{ID: string(rune('a' + a)), Records: recs})
	}

	one := (&Runner{Workers: 1}).Run(context.Background(), accounts)
	many := (&Runner{Workers: 8}).Run(context.Background(), accounts)

	require.Len(t, many, len(one))
	for i := range one {
		assert.Equal(t, one[i].Status, many[i].Status)
		assert.True(t, one[i].FinalCumulativePnL.Equal(many[i].FinalCumulativePnL))
		assert.Equal(t, one[i].TotalTrades, many[i].TotalTrades)
		assert.Equal(t, one[i].HoldingTimeTotal, many[i].HoldingTimeTotal)
	}
}

func TestRunnerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := (&Runner{Workers: 2}).Run(ctx, []Account{{
		ID:      "acct",
		Records: []trade.Record{rec("BTCUSDT", 0, true, false, 1, 1, 0)},
	}})
	require.Len(t, got, 1)
	// the single job may or may not slip through before cancel is seen
	assert.Contains(t, []report.Status{report.StatusOK, report.StatusFailed}, got[0].Status)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := "time,ticker,isBuyer,expiration,averagePrice,filledAmount\n" +
		"2024-03-15 09:00:00,BTCUSDT,True,,100,1\n" +
		"2024-03-15 10:00:00,BTCUSDT,False,\"{'reduceOnly': True}\",,1\n"
	empty := "time,ticker,isBuyer,expiration,averagePrice,filledAmount\n" +
		"2024-03-15 09:00:00,BTCUSDT,True,,,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acct-1.csv"), []byte(good), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acct-2.csv"), []byte(empty), 0o644))

	srcs, err := ingest.Scan(dir, "")
	require.NoError(t, err)

	m := obs.New()
	accounts := Load(srcs, m, nil)
	require.Len(t, accounts, 2)

	assert.Equal(t, "acct-1", accounts[0].ID)
	assert.NoError(t, accounts[0].Err)
	assert.Len(t, accounts[0].Records, 1)
	assert.Equal(t, 1, accounts[0].Dropped)

	assert.Equal(t, "acct-2", accounts[1].ID)
	assert.ErrorIs(t, accounts[1].Err, ingest.ErrEmptyInput)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues("missing_price")))

	sums := (&Runner{Workers: 2}).Run(context.Background(), accounts)
	assert.Equal(t, report.StatusOKDropped, sums[0].Status)
	assert.Equal(t, report.StatusNoData, sums[1].Status)
}

package journal

import (
	"time"

	"github.com/rustyeddy/tradeledger/report"
	"github.com/shopspring/decimal"
)

func testSummary() report.Summary {
	tph := 0.5
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return report.Summary{
		AccountID:          "alice",
		RunID:              "01HZX5Q3N7R0000000000000AB",
		Status:             report.StatusOKDropped,
		DroppedRows:        2,
		FinalCumulativePnL: decimal.RequireFromString("40"),
		TotalTrades:        2,
		AvgProfitPerTrade:  decimal.RequireFromString("20"),
		HoldingTimeTotal:   4,
		AvgHoldingInterval: 4,
		TradesPerHour:      &tph,
		Instruments: []report.InstrumentSummary{
			{
				Instrument:         "BTCUSDT",
				Status:             report.StatusOK,
				Trades:             2,
				FinalCumulativePnL: decimal.RequireFromString("40"),
				FinalState:         "side=none, qty=0.0000, avg=0.00",
			},
		},
		Trace: []report.TraceRow{
			{
				Row:            0,
				Time:           ts,
				Instrument:     "BTCUSDT",
				IsBuyer:        true,
				Price:          decimal.RequireFromString("100"),
				Quantity:       decimal.RequireFromString("2"),
				RealizedPnL:    decimal.Zero,
				CumulativePnL:  decimal.Zero,
				Kind:           "open",
				ResultingState: "side=long, qty=2.0000, avg=100.00",
			},
			{
				Row:            1,
				Time:           ts.Add(4 * time.Hour),
				Instrument:     "BTCUSDT",
				Price:          decimal.RequireFromString("120"),
				Quantity:       decimal.RequireFromString("2"),
				RealizedPnL:    decimal.RequireFromString("40"),
				CumulativePnL:  decimal.RequireFromString("40"),
				Kind:           "close",
				ResultingState: "side=none, qty=0.0000, avg=0.00",
			},
		},
	}
}

type recorder struct {
	summaries []string
	traces    []int
}

func (r *recorder) RecordSummary(s report.Summary) error {
	r.summaries = append(r.summaries, s.AccountID)
	return nil
}

func (r *recorder) RecordTrace(_, _ string, row report.TraceRow) error {
	r.traces = append(r.traces, row.Row)
	return nil
}

func (r *recorder) Close() error { return nil }

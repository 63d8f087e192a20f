// report/summary.go
package report

import (
	"time"

	"github.com/rustyeddy/tradeledger/ledger"
	"github.com/rustyeddy/tradeledger/metrics"
	"github.com/rustyeddy/tradeledger/pnl"
	"github.com/shopspring/decimal"
)

// Status says how far an account's computation got.
type Status string

const (
	StatusOK        Status = "ok"
	StatusOKDropped Status = "ok_with_dropped"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusNoData    Status = "no_data"
)

// InstrumentResult is the ledger run of one instrument of one account.
// Outcomes holds everything applied before Err, if any.
type InstrumentResult struct {
	Instrument string
	Outcomes   []ledger.Outcome
	Err        error
}

type InstrumentSummary struct {
	Instrument         string          `json:"instrument"`
	Status             Status          `json:"status"`
	Reason             string          `json:"reason,omitempty"`
	Trades             int             `json:"trades"`
	FinalCumulativePnL decimal.Decimal `json:"final_cumulative_pnl"`
	FinalState         string          `json:"final_state"`
}

// TraceRow is one line of the per-trade audit trace.
type TraceRow struct {
	Row            int             `json:"row"`
	Time           time.Time       `json:"time"`
	Instrument     string          `json:"instrument"`
	IsBuyer        bool            `json:"is_buyer"`
	ReduceOnly     bool            `json:"reduce_only"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	CumulativePnL  decimal.Decimal `json:"cumulative_pnl"`
	Kind           string          `json:"kind"`
	ResultingState string          `json:"resulting_state"`
}

// Summary is the per-account result of a run.
type Summary struct {
	AccountID          string              `json:"account_id"`
	RunID              string              `json:"run_id,omitempty"`
	Status             Status              `json:"status"`
	Reason             string              `json:"reason,omitempty"`
	DroppedRows        int                 `json:"dropped_rows"`
	FinalCumulativePnL decimal.Decimal     `json:"final_cumulative_pnl"`
	TotalTrades        int                 `json:"total_trades"`
	AvgProfitPerTrade  decimal.Decimal     `json:"avg_profit_per_trade"`
	HoldingTimeTotal   float64             `json:"holding_time_total"`
	AvgHoldingInterval float64             `json:"avg_holding_interval"`
	TradesPerHour      *float64            `json:"trades_per_hour"`
	Instruments        []InstrumentSummary `json:"instruments,omitempty"`
	Trace              []TraceRow          `json:"trace,omitempty"`
}

// Computed reports whether the summary carries real numbers.
func (s Summary) Computed() bool {
	switch s.Status {
	case StatusOK, StatusOKDropped, StatusPartial:
		return true
	}
	return false
}

// Outcomes returns every outcome of the successful part of results, in
// instrument order.
func Outcomes(results []InstrumentResult) []ledger.Outcome {
	var out []ledger.Outcome
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		out = append(out, r.Outcomes...)
	}
	return out
}

// Build summarizes one account. Instruments that failed are listed with
// their reason and left out of the totals. If every instrument failed the
// account is failed.
func Build(accountID string, dropped int, results []InstrumentResult, withTrace bool) Summary {
	s := Summary{
		AccountID:          accountID,
		DroppedRows:        dropped,
		FinalCumulativePnL: decimal.Zero,
		AvgProfitPerTrade:  decimal.Zero,
	}
	if len(results) == 0 {
		s.Status = StatusNoData
		s.Reason = "no valid rows"
		return s
	}

	failed := 0
	acc := pnl.NewAccumulator()
	for _, r := range results {
		is := InstrumentSummary{
			Instrument:         r.Instrument,
			Status:             StatusOK,
			Trades:             len(r.Outcomes),
			FinalCumulativePnL: decimal.Zero,
			FinalState:         ledger.Flat().String(),
		}
		if n := len(r.Outcomes); n > 0 {
			last := r.Outcomes[n-1]
			is.FinalCumulativePnL = last.CumulativePnL
			is.FinalState = last.State.String()
		}
		if r.Err != nil {
			failed++
			is.Status = StatusFailed
			is.Reason = r.Err.Error()
		} else {
			acc.Add(r.Instrument, is.FinalCumulativePnL)
		}
		s.Instruments = append(s.Instruments, is)
	}
	s.FinalCumulativePnL = acc.Total()

	outs := Outcomes(results)
	act := metrics.Compute(outs)
	s.TotalTrades = act.TotalTrades
	s.AvgProfitPerTrade = act.AvgProfitPerTrade
	s.HoldingTimeTotal = act.HoldingTimeTotal.Hours()
	s.AvgHoldingInterval = act.AvgHoldingInterval.Hours()
	s.TradesPerHour = act.TradesPerHour

	switch {
	case failed == len(results):
		s.Status = StatusFailed
		s.Reason = s.Instruments[0].Reason
		if failed > 1 {
			s.Reason = "all instruments failed"
		}
	case failed > 0:
		s.Status = StatusPartial
		s.Reason = "some instruments failed"
	case dropped > 0:
		s.Status = StatusOKDropped
	default:
		s.Status = StatusOK
	}

	if withTrace {
		s.Trace = Trace(outs)
	}
	return s
}

// Trace flattens outcomes into audit rows.
func Trace(outs []ledger.Outcome) []TraceRow {
	rows := make([]TraceRow, 0, len(outs))
	for _, o := range outs {
		rows = append(rows, TraceRow{
			Row:            o.Record.Row,
			Time:           o.Record.Time,
			Instrument:     o.Record.Instrument,
			IsBuyer:        o.Record.IsBuyer,
			ReduceOnly:     o.Record.ReduceOnly,
			Price:          o.Record.Price,
			Quantity:       o.Record.Quantity,
			RealizedPnL:    o.RealizedPnL,
			CumulativePnL:  o.CumulativePnL,
			Kind:           o.Kind.String(),
			ResultingState: o.State.String(),
		})
	}
	return rows
}

// Failed is the summary of an account that could not be computed.
func Failed(accountID string, dropped int, err error) Summary {
	s := Summary{
		AccountID:          accountID,
		Status:             StatusFailed,
		DroppedRows:        dropped,
		FinalCumulativePnL: decimal.Zero,
		AvgProfitPerTrade:  decimal.Zero,
	}
	if err != nil {
		s.Reason = err.Error()
	}
	return s
}

// NoData is the summary of an account without a single valid row.
func NoData(accountID string, dropped int) Summary {
	return Summary{
		AccountID:          accountID,
		Status:             StatusNoData,
		Reason:             "no valid rows",
		DroppedRows:        dropped,
		FinalCumulativePnL: decimal.Zero,
		AvgProfitPerTrade:  decimal.Zero,
	}
}

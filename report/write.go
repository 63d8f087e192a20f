package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// SummaryHeader is the column order of WriteCSV.
var SummaryHeader = []string{
	"account_id", "run_id", "status", "reason", "dropped_rows",
	"final_cumulative_pnl", "total_trades", "avg_profit_per_trade",
	"holding_time_total", "avg_holding_interval", "trades_per_hour",
}

// TraceHeader is the column order of WriteTraceCSV.
var TraceHeader = []string{
	"account_id", "row", "time", "instrument", "is_buyer", "reduce_only",
	"price", "quantity", "realized_pnl", "cumulative_pnl", "kind", "resulting_state",
}

// WriteJSON writes summaries as an indented JSON array.
func WriteJSON(w io.Writer, summaries []Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if summaries == nil {
		summaries = []Summary{}
	}
	return enc.Encode(summaries)
}

// WriteCSV writes one row per account. An undefined trades_per_hour is
// written as an empty cell.
func WriteCSV(w io.Writer, summaries []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := cw.Write(SummaryRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryRow renders s in SummaryHeader order.
func SummaryRow(s Summary) []string {
	return []string{
		s.AccountID,
		s.RunID,
		string(s.Status),
		s.Reason,
		strconv.Itoa(s.DroppedRows),
		s.FinalCumulativePnL.String(),
		strconv.Itoa(s.TotalTrades),
		s.AvgProfitPerTrade.String(),
		ff(s.HoldingTimeTotal),
		ff(s.AvgHoldingInterval),
		optional(s.TradesPerHour),
	}
}

// WriteTraceCSV writes the audit trace of every summary that has one.
func WriteTraceCSV(w io.Writer, summaries []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TraceHeader); err != nil {
		return err
	}
	for _, s := range summaries {
		for _, r := range s.Trace {
			if err := cw.Write(TraceRecord(s.AccountID, r)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// TraceRecord renders r in TraceHeader order.
func TraceRecord(accountID string, r TraceRow) []string {
	return []string{
		accountID,
		strconv.Itoa(r.Row),
		r.Time.UTC().Format(time.RFC3339Nano),
		r.Instrument,
		strconv.FormatBool(r.IsBuyer),
		strconv.FormatBool(r.ReduceOnly),
		r.Price.String(),
		r.Quantity.String(),
		r.RealizedPnL.String(),
		r.CumulativePnL.String(),
		r.Kind,
		r.ResultingState,
	}
}

func ff(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func optional(x *float64) string {
	if x == nil {
		return ""
	}
	return ff(*x)
}

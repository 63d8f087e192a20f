package journal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradeledger/report"
)

// FormatSummaryOrg renders an account summary as an Org-mode block. The
// structured facts live in a PROPERTIES drawer so they stay searchable;
// the instruments go in a table below it.
func FormatSummaryOrg(s report.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Account: %s (%s)", s.AccountID, s.Status)
	if s.RunID != "" {
		fmt.Fprintf(&b, " [%s]", shortID(s.RunID))
	}
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	if s.RunID != "" {
		fmt.Fprintf(&b, ":RUN_ID: %s\n", s.RunID)
	}
	fmt.Fprintf(&b, ":ACCOUNT_ID: %s\n", s.AccountID)
	fmt.Fprintf(&b, ":STATUS: %s\n", s.Status)
	if s.Reason != "" {
		fmt.Fprintf(&b, ":REASON: %s\n", s.Reason)
	}
	fmt.Fprintf(&b, ":DROPPED_ROWS: %d\n", s.DroppedRows)
	fmt.Fprintf(&b, ":FINAL_CUMULATIVE_PNL: %s\n", s.FinalCumulativePnL.StringFixed(2))
	fmt.Fprintf(&b, ":TOTAL_TRADES: %d\n", s.TotalTrades)
	fmt.Fprintf(&b, ":AVG_PROFIT_PER_TRADE: %s\n", s.AvgProfitPerTrade.StringFixed(2))
	fmt.Fprintf(&b, ":HOLDING_TIME_TOTAL: %.2fh\n", s.HoldingTimeTotal)
	fmt.Fprintf(&b, ":AVG_HOLDING_INTERVAL: %.2fh\n", s.AvgHoldingInterval)
	if s.TradesPerHour != nil {
		fmt.Fprintf(&b, ":TRADES_PER_HOUR: %.4f\n", *s.TradesPerHour)
	} else {
		b.WriteString(":TRADES_PER_HOUR: n/a\n")
	}
	b.WriteString(":END:\n")

	if len(s.Instruments) > 0 {
		b.WriteString("\n| Instrument | Status | Trades | Cum PnL | Final State |\n")
		b.WriteString("|------------+--------+--------+---------+-------------|\n")
		for _, is := range s.Instruments {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				is.Instrument, is.Status, is.Trades, is.FinalCumulativePnL.StringFixed(2), is.FinalState)
		}
	}
	return b.String()
}

// FormatSummariesOrg renders many summaries separated by blank lines.
func FormatSummariesOrg(summaries []report.Summary) string {
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatSummaryOrg(s))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

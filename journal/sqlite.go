package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradeledger/report"
)

type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// RecordSummary stores s and its per-instrument rows. Recording the same
// run and account twice replaces the earlier summary, instrument and
// trace rows.
func (j *SQLite) RecordSummary(s report.Summary) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var tph sql.NullFloat64
	if s.TradesPerHour != nil {
		tph = sql.NullFloat64{Float64: *s.TradesPerHour, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO summaries
		(run_id, account_id, status, reason, dropped_rows, final_cumulative_pnl, total_trades,
		 avg_profit_per_trade, holding_time_total, avg_holding_interval, trades_per_hour, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.AccountID, string(s.Status), s.Reason, s.DroppedRows, s.FinalCumulativePnL.String(),
		s.TotalTrades, s.AvgProfitPerTrade.String(), s.HoldingTimeTotal, s.AvgHoldingInterval, tph,
		j.now().UTC(),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM instruments WHERE run_id = ? AND account_id = ?`, s.RunID, s.AccountID); err != nil {
		return err
	}
	// the trace is recorded after its summary, so a replaced summary
	// starts with an empty trace
	if _, err := tx.Exec(`DELETE FROM outcomes WHERE run_id = ? AND account_id = ?`, s.RunID, s.AccountID); err != nil {
		return err
	}
	for _, is := range s.Instruments {
		_, err := tx.Exec(`
			INSERT INTO instruments
			(run_id, account_id, instrument, status, reason, trades, final_cumulative_pnl, final_state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.RunID, s.AccountID, is.Instrument, string(is.Status), is.Reason, is.Trades,
			is.FinalCumulativePnL.String(), is.FinalState,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (j *SQLite) RecordTrace(runID, accountID string, r report.TraceRow) error {
	_, err := j.db.Exec(`
		INSERT INTO outcomes
		(run_id, account_id, row, time, instrument, is_buyer, reduce_only, price, quantity,
		 realized_pnl, cumulative_pnl, kind, resulting_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, accountID, r.Row, r.Time.UTC(), r.Instrument, r.IsBuyer, r.ReduceOnly,
		r.Price.String(), r.Quantity.String(), r.RealizedPnL.String(), r.CumulativePnL.String(),
		r.Kind, r.ResultingState,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

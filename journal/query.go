package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/tradeledger/report"
)

// Run is one recorded batch run.
type Run struct {
	RunID    string
	Created  time.Time
	Accounts int
}

const summaryColumns = `run_id, account_id, status, reason, dropped_rows, final_cumulative_pnl, total_trades,
	avg_profit_per_trade, holding_time_total, avg_holding_interval, trades_per_hour`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (report.Summary, error) {
	var (
		s      report.Summary
		status string
		tph    sql.NullFloat64
	)
	err := sc.Scan(
		&s.RunID,
		&s.AccountID,
		&status,
		&s.Reason,
		&s.DroppedRows,
		&s.FinalCumulativePnL,
		&s.TotalTrades,
		&s.AvgProfitPerTrade,
		&s.HoldingTimeTotal,
		&s.AvgHoldingInterval,
		&tph,
	)
	if err != nil {
		return report.Summary{}, err
	}
	s.Status = report.Status(status)
	if tph.Valid {
		v := tph.Float64
		s.TradesPerHour = &v
	}
	return s, nil
}

// GetSummary returns the summary of one account in one run, with its
// instrument rows.
func (j *SQLite) GetSummary(runID, accountID string) (report.Summary, error) {
	row := j.db.QueryRow(`SELECT `+summaryColumns+`
		FROM summaries
		WHERE run_id = ? AND account_id = ?`, runID, accountID)

	s, err := scanSummary(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return report.Summary{}, fmt.Errorf("summary %s/%s not found", runID, accountID)
		}
		return report.Summary{}, err
	}

	s.Instruments, err = j.listInstruments(runID, accountID)
	if err != nil {
		return report.Summary{}, err
	}
	return s, nil
}

// ListSummaries returns every account summary of a run ordered by account.
func (j *SQLite) ListSummaries(runID string) ([]report.Summary, error) {
	rows, err := j.db.Query(`SELECT `+summaryColumns+`
		FROM summaries
		WHERE run_id = ?
		ORDER BY account_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Instruments, err = j.listInstruments(runID, out[i].AccountID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (j *SQLite) listInstruments(runID, accountID string) ([]report.InstrumentSummary, error) {
	rows, err := j.db.Query(`
		SELECT instrument, status, reason, trades, final_cumulative_pnl, final_state
		FROM instruments
		WHERE run_id = ? AND account_id = ?
		ORDER BY instrument ASC`, runID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.InstrumentSummary
	for rows.Next() {
		var (
			is     report.InstrumentSummary
			status string
		)
		if err := rows.Scan(&is.Instrument, &status, &is.Reason, &is.Trades, &is.FinalCumulativePnL, &is.FinalState); err != nil {
			return nil, err
		}
		is.Status = report.Status(status)
		out = append(out, is)
	}
	return out, rows.Err()
}

// ListTrace returns the recorded trace of one account, in source row order.
func (j *SQLite) ListTrace(runID, accountID string) ([]report.TraceRow, error) {
	rows, err := j.db.Query(`
		SELECT row, time, instrument, is_buyer, reduce_only, price, quantity,
		       realized_pnl, cumulative_pnl, kind, resulting_state
		FROM outcomes
		WHERE run_id = ? AND account_id = ?
		ORDER BY row ASC`, runID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.TraceRow
	for rows.Next() {
		var r report.TraceRow
		if err := rows.Scan(
			&r.Row,
			&r.Time,
			&r.Instrument,
			&r.IsBuyer,
			&r.ReduceOnly,
			&r.Price,
			&r.Quantity,
			&r.RealizedPnL,
			&r.CumulativePnL,
			&r.Kind,
			&r.ResultingState,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRuns returns every recorded run, newest first.
func (j *SQLite) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT run_id, MIN(created), COUNT(*)
		FROM summaries
		GROUP BY run_id
		ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.RunID, &created, &r.Accounts); err != nil {
			return nil, err
		}
		r.Created = parseSQLiteTime(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregates lose the DATETIME column type, so go-sqlite3 hands back the
// stored text.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS summaries (
	run_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL,
	dropped_rows INTEGER NOT NULL,
	final_cumulative_pnl TEXT NOT NULL,
	total_trades INTEGER NOT NULL,
	avg_profit_per_trade TEXT NOT NULL,
	holding_time_total REAL NOT NULL,
	avg_holding_interval REAL NOT NULL,
	trades_per_hour REAL,
	created DATETIME NOT NULL,
	PRIMARY KEY (run_id, account_id)
);

CREATE TABLE IF NOT EXISTS instruments (
	run_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL,
	trades INTEGER NOT NULL,
	final_cumulative_pnl TEXT NOT NULL,
	final_state TEXT NOT NULL,
	PRIMARY KEY (run_id, account_id, instrument)
);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	row INTEGER NOT NULL,
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	is_buyer INTEGER NOT NULL,
	reduce_only INTEGER NOT NULL,
	price TEXT NOT NULL,
	quantity TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	cumulative_pnl TEXT NOT NULL,
	kind TEXT NOT NULL,
	resulting_state TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_account ON outcomes(run_id, account_id);
`

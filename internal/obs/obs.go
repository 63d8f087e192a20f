// internal/obs/obs.go
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the run counters. They live on their own registry so a
// batch run can dump them to a node_exporter textfile when it ends.
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead      prometheus.Counter
	RowsDropped   *prometheus.CounterVec
	TradesApplied *prometheus.CounterVec
	Accounts      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradeledger_rows_read_total",
			Help: "Raw execution rows read from input",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeledger_rows_dropped_total",
			Help: "Rows excluded before reaching the ledger",
		}, []string{"reason"}),
		TradesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeledger_trades_applied_total",
			Help: "Trades folded into a position, by outcome kind",
		}, []string{"kind"}),
		Accounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradeledger_accounts_total",
			Help: "Accounts summarized, by status",
		}, []string{"status"}),
	}
	m.Registry.MustRegister(m.RowsRead, m.RowsDropped, m.TradesApplied, m.Accounts)
	return m
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

package batch

import (
	"github.com/rustyeddy/tradeledger/ingest"
	"github.com/rustyeddy/tradeledger/internal/obs"
	"go.uber.org/zap"
)

// Load reads every source into an Account. Read and parse problems end
// up on Account.Err or Account.Dropped; Load itself does not fail.
func Load(sources []ingest.Source, m *obs.Metrics, log *zap.Logger) []Account {
	if log == nil {
		log = zap.NewNop()
	}

	accounts := make([]Account, 0, len(sources))
	for _, src := range sources {
		b, err := ingest.LoadFile(src.Path)
		a := Account{
			ID:      src.AccountID,
			Records: b.Records,
			Dropped: len(b.Dropped),
			Err:     err,
		}
		accounts = append(accounts, a)

		if m != nil {
			m.RowsRead.Add(float64(b.Rows))
			for _, d := range b.Dropped {
				m.RowsDropped.WithLabelValues(d.Reason).Inc()
			}
		}
		for _, d := range b.Dropped {
			log.Debug("row dropped",
				zap.String("account_id", src.AccountID),
				zap.Int("row", d.Row),
				zap.String("reason", d.Reason),
				zap.Error(d.Err),
			)
		}
		if err != nil {
			log.Warn("source not usable", zap.String("path", src.Path), zap.Error(err))
		}
	}
	return accounts
}

package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/tradeledger/ingest"
	"github.com/rustyeddy/tradeledger/internal/obs"
	"github.com/rustyeddy/tradeledger/internal/trace"
	"github.com/rustyeddy/tradeledger/ledger"
	"github.com/rustyeddy/tradeledger/report"
	"github.com/rustyeddy/tradeledger/trade"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Account is the input of one account: its normalized records in source
// order, how many rows were dropped on the way, and the load error if
// the source could not be read.
type Account struct {
	ID      string
	Records []trade.Record
	Dropped int
	Err     error
}

// Runner computes summaries for many accounts. Every (account,
// instrument) pair is an independent ledger fold, so those are spread
// over Workers goroutines and merged at the end.
type Runner struct {
	Workers int
	Trace   bool
	RunID   string
	Logger  *zap.Logger
	Metrics *obs.Metrics
}

type job struct {
	account    int
	slot       int
	instrument string
	records    []trade.Record
}

type done struct {
	account int
	slot    int
	result  report.InstrumentResult
}

// Run returns one summary per account, in the order given. It never
// fails as a whole: problems are reported on the affected summary.
func (r *Runner) Run(ctx context.Context, accounts []Account) []report.Summary {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	ctx, span := trace.StartSpan(ctx, "batch.Run",
		attribute.Int("accounts", len(accounts)),
		attribute.Int("workers", workers),
	)
	defer span.End()

	results := make([][]report.InstrumentResult, len(accounts))
	var jobs []job
	for i, a := range accounts {
		if a.Err != nil {
			continue
		}
		groups := SplitByInstrument(a.Records)
		results[i] = make([]report.InstrumentResult, len(groups))
		for slot, g := range groups {
			results[i][slot] = report.InstrumentResult{Instrument: g.Instrument}
			jobs = append(jobs, job{account: i, slot: slot, instrument: g.Instrument, records: g.Records})
		}
	}

	jobCh := make(chan job)
	doneCh := make(chan done)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				doneCh <- done{
					account: j.account,
					slot:    j.slot,
					result:  r.fold(ctx, accounts[j.account].ID, j, log),
				}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(doneCh)
	}()

	finished := make([][]bool, len(accounts))
	for i := range results {
		finished[i] = make([]bool, len(results[i]))
	}
	for d := range doneCh {
		results[d.account][d.slot] = d.result
		finished[d.account][d.slot] = true
	}

	summaries := make([]report.Summary, len(accounts))
	for i, a := range accounts {
		summaries[i] = r.summarize(ctx, a, results[i], finished[i])
		summaries[i].RunID = r.RunID
		if r.Metrics != nil {
			r.Metrics.Accounts.WithLabelValues(string(summaries[i].Status)).Inc()
		}
		log.Info("account summarized",
			zap.String("account_id", a.ID),
			zap.String("status", string(summaries[i].Status)),
			zap.Int("trades", summaries[i].TotalTrades),
			zap.Int("dropped_rows", a.Dropped),
			zap.String("final_cumulative_pnl", summaries[i].FinalCumulativePnL.String()),
		)
	}

	log.Info("batch complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("jobs", len(jobs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summaries
}

func (r *Runner) summarize(ctx context.Context, a Account, results []report.InstrumentResult, finished []bool) report.Summary {
	_, span := trace.StartSpan(ctx, "batch.account", attribute.String("account_id", a.ID))
	defer span.End()

	switch {
	case errors.Is(a.Err, ingest.ErrEmptyInput):
		return report.NoData(a.ID, a.Dropped)
	case a.Err != nil:
		return report.Failed(a.ID, a.Dropped, a.Err)
	}

	for slot, ok := range finished {
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = errors.New("not computed")
			}
			results[slot].Err = err
		}
	}
	return report.Build(a.ID, a.Dropped, results, r.Trace)
}

func (r *Runner) fold(ctx context.Context, accountID string, j job, log *zap.Logger) report.InstrumentResult {
	_, span := trace.StartSpan(ctx, "ledger.fold",
		attribute.String("account_id", accountID),
		attribute.String("instrument", j.instrument),
		attribute.Int("records", len(j.records)),
	)
	defer span.End()

	l := ledger.New(ledger.WithLogger(log.With(zap.String("account_id", accountID))))
	res := report.InstrumentResult{Instrument: j.instrument, Outcomes: make([]ledger.Outcome, 0, len(j.records))}
	for _, rec := range j.records {
		o, err := l.Apply(rec)
		if err != nil {
			res.Err = err
			span.RecordError(err)
			log.Warn("instrument run aborted",
				zap.String("account_id", accountID),
				zap.String("instrument", j.instrument),
				zap.Int("row", rec.Row),
				zap.Error(err),
			)
			return res
		}
		if r.Metrics != nil {
			r.Metrics.TradesApplied.WithLabelValues(o.Kind.String()).Inc()
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	return res
}

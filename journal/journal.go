// journal/journal.go
package journal

import (
	"github.com/rustyeddy/tradeledger/report"
)

// Journal persists the results of a run for later auditing. Journals are
// written after the computation has finished, never during it.
type Journal interface {
	RecordSummary(report.Summary) error
	RecordTrace(runID, accountID string, row report.TraceRow) error
	Close() error
}

// Write records every summary of a run and, when present, its trace.
func Write(j Journal, summaries []report.Summary) error {
	for _, s := range summaries {
		if err := j.RecordSummary(s); err != nil {
			return err
		}
		for _, r := range s.Trace {
			if err := j.RecordTrace(s.RunID, s.AccountID, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSummary(report.Summary) error { return nil }

func (Nop) RecordTrace(string, string, report.TraceRow) error { return nil }

func (Nop) Close() error { return nil }

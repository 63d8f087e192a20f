package journal

import (
	"encoding/csv"
	"os"

	"github.com/rustyeddy/tradeledger/report"
)

type CSVJournal struct {
	trace   *csv.Writer
	summary *csv.Writer
	tf, sf  *os.File
}

// NewCSV creates (truncating) the trace and summary files and writes
// their header rows.
func NewCSV(tracePath, summaryPath string) (*CSVJournal, error) {
	tf, err := os.Create(tracePath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(summaryPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{trace: csv.NewWriter(tf), summary: csv.NewWriter(sf), tf: tf, sf: sf}
	if err := j.trace.Write(append([]string{"run_id"}, report.TraceHeader...)); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.summary.Write(report.SummaryHeader); err != nil {
		j.Close()
		return nil, err
	}
	j.trace.Flush()
	j.summary.Flush()
	if err := j.firstError(); err != nil {
		j.Close()
		return nil, err
	}

	return j, nil
}

func (j *CSVJournal) RecordSummary(s report.Summary) error {
	if err := j.summary.Write(report.SummaryRow(s)); err != nil {
		return err
	}
	j.summary.Flush()
	return j.summary.Error()
}

func (j *CSVJournal) RecordTrace(runID, accountID string, r report.TraceRow) error {
	if err := j.trace.Write(append([]string{runID}, report.TraceRecord(accountID, r)...)); err != nil {
		return err
	}
	j.trace.Flush()
	return j.trace.Error()
}

func (j *CSVJournal) Close() error {
	j.trace.Flush()
	j.summary.Flush()
	err := j.firstError()

	if cerr := j.tf.Close(); err == nil {
		err = cerr
	}
	if cerr := j.sf.Close(); err == nil {
		err = cerr
	}
	return err
}

func (j *CSVJournal) firstError() error {
	if err := j.trace.Error(); err != nil {
		return err
	}
	return j.summary.Error()
}

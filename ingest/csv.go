package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rustyeddy/tradeledger/trade"
)

// Column names of the execution export. Matching is case-insensitive.
const (
	ColTime         = "time"
	ColTicker       = "ticker"
	ColIsBuyer      = "isBuyer"
	ColExpiration   = "expiration"
	ColAveragePrice = "averagePrice"
	ColPrice        = "price"
	ColFilledAmount = "filledAmount"
)

// CSVReader yields RawRows from a CSV export with a header row.
// Columns are located by name, so extra columns and any column order
// are fine.
type CSVReader struct {
	r     *csv.Reader
	cols  map[string]int
	index int
}

// NewCSVReader reads the header and checks that the required columns
// are there.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: %w", ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	for _, c := range []string{ColTime, ColTicker, ColIsBuyer, ColFilledAmount} {
		if _, ok := cols[strings.ToLower(c)]; !ok {
			return nil, fmt.Errorf("csv header: missing column %q", c)
		}
	}
	_, hasAvg := cols[strings.ToLower(ColAveragePrice)]
	_, hasPrice := cols[strings.ToLower(ColPrice)]
	if !hasAvg && !hasPrice {
		return nil, fmt.Errorf("csv header: missing column %q or %q", ColAveragePrice, ColPrice)
	}

	return &CSVReader{r: cr, cols: cols}, nil
}

func (c *CSVReader) field(row []string, name string) Field {
	i, ok := c.cols[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return Field{}
	}
	return F(row[i])
}

// Next returns the next data row. ok is false at EOF. Row indexes count
// data rows from 0 and skip the header.
func (c *CSVReader) Next() (RawRow, bool, error) {
	for {
		row, err := c.r.Read()
		if err == io.EOF {
			return RawRow{}, false, nil
		}
		if err != nil {
			return RawRow{}, false, err
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		idx := c.index
		c.index++

		return RawRow{
			Index:        idx,
			Time:         c.field(row, ColTime),
			Ticker:       c.field(row, ColTicker),
			IsBuyer:      c.field(row, ColIsBuyer),
			Expiration:   c.field(row, ColExpiration),
			AveragePrice: c.field(row, ColAveragePrice),
			Price:        c.field(row, ColPrice),
			FilledAmount: c.field(row, ColFilledAmount),
		}, true, nil
	}
}

// Drop records a row that was excluded from the stream.
type Drop struct {
	Row    int
	Reason string
	Err    error
}

// Batch is the normalized content of one source.
type Batch struct {
	Records []trade.Record
	Dropped []Drop
	Rows    int
}

// Load reads every row of r, normalizing as it goes. Rows with a missing
// price or a parse error are dropped and listed in Batch.Dropped. If no
// row survives, the batch is returned together with ErrEmptyInput.
func Load(r io.Reader) (Batch, error) {
	cr, err := NewCSVReader(r)
	if err != nil {
		return Batch{}, err
	}

	var b Batch
	for {
		raw, ok, err := cr.Next()
		if err != nil {
			return b, fmt.Errorf("csv row %d: %w", cr.index, err)
		}
		if !ok {
			break
		}
		b.Rows++

		rec, err := Normalize(raw)
		if err != nil {
			reason := "parse"
			if errors.Is(err, ErrMissingPrice) {
				reason = "missing_price"
			}
			b.Dropped = append(b.Dropped, Drop{Row: raw.Index, Reason: reason, Err: err})
			continue
		}
		b.Records = append(b.Records, rec)
	}

	if len(b.Records) == 0 {
		return b, ErrEmptyInput
	}
	return b, nil
}

// LoadFile opens path and Loads it.
func LoadFile(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, err
	}
	defer f.Close()

	b, err := Load(f)
	if err != nil {
		return b, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

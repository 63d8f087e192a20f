// ingest/normalize.go
package ingest

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
)

// Field is one raw column value. Present is false when the column was
// missing from the source altogether.
type Field struct {
	Value   string
	Present bool
}

// F builds a present field.
func F(v string) Field { return Field{Value: v, Present: true} }

// null reports whether the field carries no value.
func (f Field) null() bool {
	if !f.Present {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(f.Value)) {
	case "", "null", "none", "nan", "nil":
		return true
	}
	return false
}

// RawRow is one execution as it comes out of an exchange export.
type RawRow struct {
	Index        int
	Time         Field
	Ticker       Field
	IsBuyer      Field
	Expiration   Field
	AveragePrice Field
	Price        Field
	FilledAmount Field
}

// The side channel looks like a python dict dump:
//
//	{'reduceOnly': True, 'postOnly': False}
var reduceOnlyRe = regexp.MustCompile(`['"]?reduceOnly['"]?\s*:\s*(\w+)`)

// ExtractReduceOnly pulls the reduceOnly flag out of the loosely
// structured expiration blob. Only a literal True/true counts; a missing
// key or any other token is false.
func ExtractReduceOnly(blob string) bool {
	m := reduceOnlyRe.FindStringSubmatch(blob)
	if m == nil {
		return false
	}
	return m[1] == "True" || m[1] == "true"
}

// Normalize turns a raw row into a trade.Record.
//
// A missing or null price yields ErrMissingPrice. Anything that fails to
// parse yields a *ParseError.
func Normalize(row RawRow) (trade.Record, error) {
	priceField := row.AveragePrice
	name := "averagePrice"
	if priceField.null() {
		priceField = row.Price
		name = "price"
	}
	if priceField.null() {
		return trade.Record{}, fmt.Errorf("row %d: %w", row.Index, ErrMissingPrice)
	}

	rec := trade.Record{Row: row.Index}

	if row.Ticker.null() {
		return trade.Record{}, &ParseError{Row: row.Index, Field: "ticker", Value: row.Ticker.Value, Err: errors.New("empty")}
	}
	rec.Instrument = strings.TrimSpace(row.Ticker.Value)

	ts, err := ParseTime(row.Time.Value)
	if err != nil {
		return trade.Record{}, &ParseError{Row: row.Index, Field: "time", Value: row.Time.Value, Err: err}
	}
	rec.Time = ts

	buyer, err := strconv.ParseBool(strings.TrimSpace(row.IsBuyer.Value))
	if err != nil {
		return trade.Record{}, &ParseError{Row: row.Index, Field: "isBuyer", Value: row.IsBuyer.Value, Err: err}
	}
	rec.IsBuyer = buyer

	price, err := positive(priceField.Value)
	if err != nil {
		return trade.Record{}, &ParseError{Row: row.Index, Field: name, Value: priceField.Value, Err: err}
	}
	rec.Price = price

	qty, err := positive(row.FilledAmount.Value)
	if err != nil {
		return trade.Record{}, &ParseError{Row: row.Index, Field: "filledAmount", Value: row.FilledAmount.Value, Err: err}
	}
	rec.Quantity = qty

	rec.ReduceOnly = ExtractReduceOnly(row.Expiration.Value)
	return rec, nil
}

func positive(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if !v.IsPositive() {
		return decimal.Zero, errors.New("must be positive")
	}
	return v, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// maxEpochMillis bounds numeric times to about year 33658 in millis.
const maxEpochMillis = 1e15

// ParseTime accepts RFC3339 (with or without fraction), naive
// "YYYY-MM-DD hh:mm:ss[.frac]" in UTC, or a numeric epoch in seconds or
// milliseconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty")
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, errors.New("epoch must be finite")
		}
		if n <= 0 {
			return time.Time{}, errors.New("epoch must be positive")
		}
		if n >= maxEpochMillis {
			return time.Time{}, errors.New("epoch out of range")
		}
		// anything past 1e11 seconds is year 5138; treat it as millis
		if n > 1e11 {
			return time.UnixMilli(int64(n)).UTC(), nil
		}
		sec := int64(n)
		nsec := int64((n - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time layout")
}

package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/tradeledger/pnl"
	"github.com/rustyeddy/tradeledger/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome is what the ledger emits for each applied record.
type Outcome struct {
	Record        trade.Record
	RealizedPnL   decimal.Decimal
	CumulativePnL decimal.Decimal
	State         Position
	Kind          Kind
	Unused        decimal.Decimal
}

type book struct {
	pos    Position
	last   time.Time
	seen   bool
	failed error
}

// Ledger owns the position of every instrument it has seen. A Ledger is
// a sequential fold and is not safe for concurrent use; run one Ledger
// per goroutine.
type Ledger struct {
	books map[string]*book
	acc   *pnl.Accumulator
	log   *zap.Logger
}

type Option func(*Ledger)

// WithLogger sets the logger used for per-trade diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.log = l
		}
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		books: make(map[string]*book),
		acc:   pnl.NewAccumulator(),
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Apply validates r, checks it does not go back in time for its
// instrument, and folds it into the instrument's position.
//
// After an OrderingViolation the instrument is poisoned: every later
// record for it returns the same error. Other instruments are unaffected.
func (l *Ledger) Apply(r trade.Record) (Outcome, error) {
	if err := r.Validate(); err != nil {
		return Outcome{}, err
	}

	b, ok := l.books[r.Instrument]
	if !ok {
		b = &book{pos: Flat()}
		l.books[r.Instrument] = b
	}
	if b.failed != nil {
		return Outcome{}, b.failed
	}
	if b.seen && r.Time.Before(b.last) {
		b.failed = &OrderingViolation{
			Instrument: r.Instrument,
			Row:        r.Row,
			Previous:   b.last,
			Got:        r.Time,
		}
		return Outcome{}, b.failed
	}

	tr := Apply(b.pos, r)
	if err := tr.State.Check(); err != nil {
		return Outcome{}, fmt.Errorf("%s: row %d: %w", r.Instrument, r.Row, err)
	}

	b.pos = tr.State
	b.last = r.Time
	b.seen = true

	out := Outcome{
		Record:        r,
		RealizedPnL:   tr.Realized,
		CumulativePnL: l.acc.Add(r.Instrument, tr.Realized),
		State:         tr.State,
		Kind:          tr.Kind,
		Unused:        tr.Unused,
	}

	if tr.Kind == Ignored {
		l.log.Debug("reduce-only trade not applicable",
			zap.String("instrument", r.Instrument),
			zap.Int("row", r.Row),
			zap.Bool("is_buyer", r.IsBuyer),
			zap.Stringer("position", tr.State),
		)
	}
	if tr.Unused.IsPositive() {
		l.log.Debug("reduce-only quantity exceeds position",
			zap.String("instrument", r.Instrument),
			zap.Int("row", r.Row),
			zap.String("unused", tr.Unused.String()),
		)
	}
	return out, nil
}

// Position returns the current position for instrument; flat if unseen.
func (l *Ledger) Position(instrument string) Position {
	if b, ok := l.books[instrument]; ok {
		return b.pos
	}
	return Flat()
}

// Cumulative returns the realized PnL accumulated for instrument.
func (l *Ledger) Cumulative(instrument string) decimal.Decimal {
	return l.acc.Get(instrument)
}

// Total returns the realized PnL across every instrument.
func (l *Ledger) Total() decimal.Decimal {
	return l.acc.Total()
}

// Instruments lists every instrument seen, sorted.
func (l *Ledger) Instruments() []string {
	out := make([]string, 0, len(l.books))
	for k := range l.books {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Replay runs a fresh Ledger over records and returns one Outcome per
// record. It stops at the first error.
func Replay(records []trade.Record, opts ...Option) ([]Outcome, error) {
	l := New(opts...)
	out := make([]Outcome, 0, len(records))
	for _, r := range records {
		o, err := l.Apply(r)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

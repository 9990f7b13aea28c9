// Package reconcile joins count records against reference data and computes
// variance and adjustment per item.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/esc4n0rx/StockSense/internal/domain/reference"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
)

// Source is the reference data the resolver reads. Every method receives the
// full list of codes for one lookup and must not be called per code.
type Source interface {
	BoxQuantities(ctx context.Context, key reference.BoxKey, codes []string) ([]reference.Row, error)
	Balances(ctx context.Context, codes []string) ([]reference.Row, error)
	Prices(ctx context.Context, codes []string) ([]reference.Row, error)
	CutDates(ctx context.Context, codes []string) ([]reference.CutRow, error)
}

// Lookups maps codes to resolved values. Codes without a match are absent.
type Lookups struct {
	BoxQty  map[string]float64
	Balance map[string]float64
	Price   map[string]float64
	Cut     map[string]string
}

func newLookups() Lookups {
	return Lookups{
		BoxQty:  map[string]float64{},
		Balance: map[string]float64{},
		Price:   map[string]float64{},
		Cut:     map[string]string{},
	}
}

type Resolver struct {
	src        Source
	log        *slog.Logger
	metrics    *metrics.Metrics
	classify   CodeClassifier
	strategies BoxStrategies
}

type Option func(*Resolver)

func WithClassifier(c CodeClassifier) Option {
	return func(r *Resolver) { r.classify = c }
}

func WithBoxStrategies(s BoxStrategies) Option {
	return func(r *Resolver) { r.strategies = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

func NewResolver(src Source, log *slog.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	r := &Resolver{
		src:        src,
		log:        log,
		classify:   ClassifyByLength(DefaultShortCodeMaxLen),
		strategies: DefaultBoxStrategies(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up box quantity, balance, price and latest cut date for codes.
// A failing lookup is logged and contributes nothing; Resolve itself never fails.
func (r *Resolver) Resolve(ctx context.Context, codes []string) Lookups {
	out := newLookups()
	codes = unique(codes)
	if len(codes) == 0 {
		return out
	}

	byClass := map[CodeClass][]string{}
	for _, c := range codes {
		cls := r.classify(c)
		byClass[cls] = append(byClass[cls], c)
	}
	for _, cls := range []CodeClass{ShortCode, LongCode} {
		r.resolveBoxes(ctx, byClass[cls], r.strategies[cls], out.BoxQty)
	}

	if rows, err := r.src.Balances(ctx, codes); err != nil {
		r.failed("balance", len(codes), err)
	} else {
		for _, row := range rows {
			out.Balance[row.Code] += row.Value
		}
	}

	if rows, err := r.src.Prices(ctx, codes); err != nil {
		r.failed("price", len(codes), err)
	} else {
		for _, row := range rows {
			out.Price[row.Code] = row.Value
		}
	}

	if rows, err := r.src.CutDates(ctx, codes); err != nil {
		r.failed("cut", len(codes), err)
	} else {
		for _, row := range rows {
			// Ties keep the row seen first.
			if cur, ok := out.Cut[row.Code]; !ok || row.Date > cur {
				out.Cut[row.Code] = row.Date
			}
		}
	}

	return out
}

// resolveBoxes tries each key in order, querying only codes no earlier key matched.
func (r *Resolver) resolveBoxes(ctx context.Context, codes []string, keys []reference.BoxKey, dst map[string]float64) {
	pending := codes
	for _, key := range keys {
		if len(pending) == 0 {
			return
		}
		rows, err := r.src.BoxQuantities(ctx, key, pending)
		if err != nil {
			r.failed("box_"+string(key), len(pending), err)
			continue
		}

		want := make(map[string]bool, len(pending))
		for _, c := range pending {
			want[c] = true
		}
		for _, row := range rows {
			if want[row.Code] {
				dst[row.Code] = row.Value
			}
		}

		next := pending[:0:0]
		for _, c := range pending {
			if _, ok := dst[c]; !ok {
				next = append(next, c)
			}
		}
		pending = next
	}
}

func (r *Resolver) failed(lookup string, codes int, err error) {
	r.metrics.LookupFailed(lookup)
	r.log.Warn("reference lookup failed, treating as empty",
		"lookup", lookup, "codes", codes, "err", err)
}

func unique(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

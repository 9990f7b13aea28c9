// Package dashboard aggregates count records into the figures shown on the
// home screen.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
)

const (
	DefaultPageSize = 1000
	recentDays      = 5
)

type PageSource interface {
	Page(ctx context.Context, offset, limit int) ([]counts.EnrichedRecord, error)
}

type DailyTotal struct {
	DataFeita     string  `json:"data_feita"`
	TotalContagem float64 `json:"totalContagem"`
}

type Activity struct {
	DataFeita    string `json:"data_feita"`
	Itens        int    `json:"itens"`
	Divergencias int    `json:"divergencias"`
}

type Summary struct {
	TotalRotativos     int          `json:"totalRotativos"`
	TotalItensContados int          `json:"totalItensContados"`
	TotalDivergencia   int          `json:"totalDivergencia"`
	UltimoRotativo     *string      `json:"ultimoRotativo"`
	TotalAjuste        float64      `json:"totalAjuste"`
	ConsumoEstoque     []DailyTotal `json:"consumoEstoque"`
	AtividadeRecente   []Activity   `json:"atividadeRecente"`
}

type Service struct {
	src      PageSource
	pageSize int
	log      *slog.Logger
}

func NewService(src PageSource, pageSize int, log *slog.Logger) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{src: src, pageSize: pageSize, log: log}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	recs, err := FetchAll(ctx, s.src, s.pageSize)
	if err != nil {
		return Summary{}, err
	}
	sum := Aggregate(recs)
	s.log.Debug("dashboard aggregated", "records", len(recs), "dates", sum.TotalRotativos)
	return sum, nil
}

// FetchAll reads every record page by page until a page comes back short.
func FetchAll(ctx context.Context, src PageSource, pageSize int) ([]counts.EnrichedRecord, error) {
	var all []counts.EnrichedRecord
	for offset := 0; ; offset += pageSize {
		page, err := src.Page(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page at %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

type dayAcc struct {
	seen      map[string]bool
	divergent map[string]bool
	total     decimal.Decimal
	ajuste    decimal.Decimal
}

// Aggregate computes the dashboard from the full record set. Within a date a
// code is counted once, using the first record seen for it.
func Aggregate(recs []counts.EnrichedRecord) Summary {
	out := Summary{ConsumoEstoque: []DailyTotal{}, AtividadeRecente: []Activity{}}
	if len(recs) == 0 {
		return out
	}

	days := map[string]*dayAcc{}
	var dates []string
	for _, r := range recs {
		d := days[r.DataFeita]
		if d == nil {
			d = &dayAcc{seen: map[string]bool{}, divergent: map[string]bool{}}
			days[r.DataFeita] = d
			dates = append(dates, r.DataFeita)
		}
		code := r.Code()
		if r.Diferenca != 0 {
			d.divergent[code] = true
		}
		if d.seen[code] {
			continue
		}
		d.seen[code] = true
		d.total = d.total.Add(decimal.NewFromFloat(r.Contagem.Float64()))
		d.ajuste = d.ajuste.Add(decimal.NewFromFloat(r.VAjuste))
	}

	sort.SliceStable(dates, func(i, j int) bool { return dateBefore(dates[i], dates[j]) })

	latest := dates[len(dates)-1]
	ld := days[latest]
	out.TotalRotativos = len(dates)
	out.UltimoRotativo = &latest
	out.TotalItensContados = len(ld.seen)
	out.TotalDivergencia = len(ld.divergent)
	out.TotalAjuste = ld.ajuste.InexactFloat64()

	for _, date := range dates {
		out.ConsumoEstoque = append(out.ConsumoEstoque, DailyTotal{
			DataFeita:     date,
			TotalContagem: days[date].total.InexactFloat64(),
		})
	}
	for i := len(dates) - 1; i >= 0 && len(out.AtividadeRecente) < recentDays; i-- {
		d := days[dates[i]]
		out.AtividadeRecente = append(out.AtividadeRecente, Activity{
			DataFeita:    dates[i],
			Itens:        len(d.seen),
			Divergencias: len(d.divergent),
		})
	}
	return out
}

// dateBefore orders ISO dates chronologically and anything else as text.
func dateBefore(a, b string) bool {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

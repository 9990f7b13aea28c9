package rotativo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
)

var (
	ErrNoMaterials = errors.New("no materials selected")
	ErrNoDate      = errors.New("date is required")
)

type ItemStore interface {
	InsertItems(ctx context.Context, items []Item) error
	ItemsOn(ctx context.Context, date string) ([]Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	UpdateCount(ctx context.Context, id int64, contagem float64, status Status) error
}

// BalanceSource sums available stock per code in one query.
type BalanceSource interface {
	SumBalances(ctx context.Context, codes []string) (map[string]float64, error)
}

type CountSource interface {
	ListByDate(ctx context.Context, date string) ([]counts.EnrichedRecord, error)
	Dates(ctx context.Context) ([]string, error)
}

const DefaultUpdateWorkers = 8

type Service struct {
	items    ItemStore
	balances BalanceSource
	counted  CountSource
	codes    *CodeGenerator
	workers  int
	log      *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(items ItemStore, balances BalanceSource, counted CountSource, codes *CodeGenerator, workers int, log *slog.Logger, m *metrics.Metrics) *Service {
	if workers < 1 {
		workers = DefaultUpdateWorkers
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		items:    items,
		balances: balances,
		counted:  counted,
		codes:    codes,
		workers:  workers,
		log:      log,
		metrics:  m,
	}
}

// Create opens a cyclic count for mats. All items share one code and today's
// date, start pending with a zero count, and carry the balance at this moment.
func (s *Service) Create(ctx context.Context, mats []MaterialInput) (Batch, error) {
	var picked []MaterialInput
	codes := make([]string, 0, len(mats))
	for _, m := range mats {
		if m.Codigo == "" {
			continue
		}
		picked = append(picked, m)
		codes = append(codes, m.Codigo.String())
	}
	if len(picked) == 0 {
		return Batch{}, ErrNoMaterials
	}

	saldo, err := s.balances.SumBalances(ctx, codes)
	if err != nil {
		return Batch{}, fmt.Errorf("balance snapshot: %w", err)
	}

	cod, date := s.codes.Next()
	items := make([]Item, len(picked))
	for i, m := range picked {
		items[i] = Item{
			Codigo:        m.Codigo.String(),
			Descricao:     m.Descricao,
			UnidadeMedida: m.UnidadeMedida,
			SaldoSAP:      saldo[m.Codigo.String()],
			Contagem:      0,
			Data:          date,
			CodRotativo:   cod,
			Status:        StatusPending,
		}
	}

	if err := s.items.InsertItems(ctx, items); err != nil {
		return Batch{}, fmt.Errorf("insert rotativo %s: %w", cod, err)
	}
	s.log.Info("rotativo created", "cod_rotativo", cod, "items", len(items), "data", date)
	return Batch{CodRotativo: cod, Data: date, Items: items}, nil
}

// UpdateStatus fills in counts for every item assigned on date and marks each
// ok or erro. Items are written independently; a failed write is reported in
// its result and does not stop the others.
func (s *Service) UpdateStatus(ctx context.Context, date string) (UpdateReport, error) {
	if date == "" {
		return UpdateReport{}, ErrNoDate
	}

	items, err := s.items.ItemsOn(ctx, date)
	if err != nil {
		return UpdateReport{}, fmt.Errorf("load rotativo items: %w", err)
	}
	recs, err := s.counted.ListByDate(ctx, date)
	if err != nil {
		return UpdateReport{}, fmt.Errorf("load counts: %w", err)
	}

	counted := make(map[string]float64, len(recs))
	for _, r := range recs {
		counted[r.Code()] = r.Contagem.Float64()
	}

	results := make([]UpdateResult, len(items))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, it := range items {
		contagem := counted[it.Codigo]
		diferenca, status := StatusFor(contagem, it.SaldoSAP)
		results[i] = UpdateResult{
			ID:        it.ID,
			Codigo:    it.Codigo,
			SaldoSAP:  it.SaldoSAP,
			Contagem:  contagem,
			Diferenca: diferenca,
			Status:    status,
		}
		g.Go(func() error {
			res := &results[i]
			if err := s.items.UpdateCount(ctx, it.ID, contagem, status); err != nil {
				res.Error = err.Error()
				s.metrics.RotativoUpdate(false)
				s.log.Warn("rotativo item update failed", "id", it.ID, "codigo", it.Codigo, "err", err)
				return nil
			}
			res.Updated = true
			s.metrics.RotativoUpdate(true)
			return nil
		})
	}
	_ = g.Wait()

	rep := UpdateReport{Date: date, Total: len(results), Results: results}
	for _, r := range results {
		if r.Updated {
			rep.Updated++
		} else {
			rep.Failed++
		}
	}
	s.log.Info("rotativo status updated", "data", date, "total", rep.Total, "failed", rep.Failed)
	return rep, nil
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.items.ListItems(ctx)
}

// CountDates lists the dates that have count records, newest first.
func (s *Service) CountDates(ctx context.Context) ([]string, error) {
	return s.counted.Dates(ctx)
}

package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
)

// Pipeline turns count records into enriched records using one Resolve per batch.
type Pipeline struct {
	res     *Resolver
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPipeline(res *Resolver, log *slog.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{res: res, log: log, metrics: m, now: time.Now}
}

// Enrich returns one enriched record per input record, in input order.
// Inputs are not modified and an empty batch issues no queries.
func (p *Pipeline) Enrich(ctx context.Context, recs []counts.CountRecord) []counts.EnrichedRecord {
	out := make([]counts.EnrichedRecord, 0, len(recs))
	if len(recs) == 0 {
		return out
	}
	start := p.now()

	codes := make([]string, len(recs))
	for i, rec := range recs {
		codes[i] = rec.Code()
	}
	lk := p.res.Resolve(ctx, codes)

	for _, rec := range recs {
		out = append(out, counts.EnrichedRecord{
			CountRecord: rec,
			Analysis:    analyze(rec, lk),
		})
	}

	took := p.now().Sub(start)
	p.metrics.ObserveEnrich(len(out), took)
	p.log.Debug("batch enriched", "records", len(out), "box_matches", len(lk.BoxQty), "took", took)
	return out
}

func analyze(rec counts.CountRecord, lk Lookups) counts.Analysis {
	code := rec.Code()
	saldo := lk.Balance[code]
	preco := lk.Price[code]
	diferenca := rec.Contagem.Float64() - saldo

	return counts.Analysis{
		QtdPorCx:  lk.BoxQty[code],
		Saldo:     saldo,
		Diferenca: diferenca,
		Preco:     preco,
		VAjuste:   diferenca * preco,
		Corte:     lk.Cut[code],
		Setor:     counts.SectorOf(rec.Endereco),
	}
}

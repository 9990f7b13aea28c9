package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/esc4n0rx/StockSense/internal/domain/counts"
)

type Summary struct {
	Records         int
	Divergent       int
	TotalAdjustment decimal.Decimal
}

// Summarize totals an enriched batch. The adjustment is summed in decimal.
func Summarize(recs []counts.EnrichedRecord) Summary {
	s := Summary{Records: len(recs), TotalAdjustment: decimal.Zero}
	for _, r := range recs {
		if r.Diferenca != 0 {
			s.Divergent++
		}
		s.TotalAdjustment = s.TotalAdjustment.Add(decimal.NewFromFloat(r.VAjuste))
	}
	return s
}

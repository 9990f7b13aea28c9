package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
)

type Writer interface {
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type Loader struct {
	w       Writer
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewLoader(w Writer, log *slog.Logger, m *metrics.Metrics) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{w: w, log: log, metrics: m}
}

// Load writes b in chunks of size rows and calls progress with the share done
// after each chunk. It stops at the first failed chunk; earlier chunks stay written.
func (l *Loader) Load(ctx context.Context, b Batch, size int, progress func(pct int)) (int, error) {
	if size < 1 {
		size = DefaultBatchSize
	}
	total := len(b.Rows)
	written := 0
	for i := 0; i < total; i += size {
		end := min(i+size, total)
		if _, err := l.w.InsertRows(ctx, b.Table, b.Columns, b.Rows[i:end]); err != nil {
			l.log.Error("ingest chunk failed", "table", b.Table, "from", i, "to", end, "err", err)
			return written, fmt.Errorf("insert %s rows %d-%d: %w", b.Table, i, end, err)
		}
		written = end
		l.metrics.RowsIngested(b.Table, end-i)
		if progress != nil {
			progress(min(100, written*100/total))
		}
	}
	l.log.Info("ingest finished", "table", b.Table, "rows", written)
	return written, nil
}

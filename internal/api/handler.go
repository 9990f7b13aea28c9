// Package api exposes the StockSense HTTP routes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/countsheet"
	"github.com/esc4n0rx/StockSense/internal/dashboard"
	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/domain/rotativo"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/ingest"
)

type Enricher interface {
	Enrich(ctx context.Context, recs []counts.CountRecord) []counts.EnrichedRecord
}

type CountStore interface {
	Upsert(ctx context.Context, recs []counts.EnrichedRecord) error
}

type DashboardService interface {
	Summary(ctx context.Context) (dashboard.Summary, error)
}

type TableReader interface {
	ListRows(ctx context.Context, table string) ([]map[string]any, error)
}

type RowLoader interface {
	Load(ctx context.Context, b ingest.Batch, size int, progress func(pct int)) (int, error)
}

type RotativoService interface {
	Create(ctx context.Context, mats []rotativo.MaterialInput) (rotativo.Batch, error)
	UpdateStatus(ctx context.Context, date string) (rotativo.UpdateReport, error)
	List(ctx context.Context) ([]rotativo.Item, error)
	CountDates(ctx context.Context) ([]string, error)
}

type SheetBuilder interface {
	Build(ctx context.Context, opts countsheet.Options) ([]countsheet.Line, error)
}

// Deps wires the handler. Any dependency left nil makes its routes answer 503.
type Deps struct {
	Pipeline  Enricher
	Counts    CountStore
	Dashboard DashboardService
	Tables    TableReader
	Loader    RowLoader
	Rotativo  RotativoService
	Sheets    SheetBuilder
	Today     func() string
	Log       *slog.Logger
}

type Handler struct {
	d   Deps
	log *slog.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	if d.Today == nil {
		d.Today = func() string { return time.Now().Format("2006-01-02") }
	}
	return &Handler{d: d, log: log}
}

var errNotConfigured = errors.New("data store is not configured")

func (h *Handler) ready(c *gin.Context, deps ...any) bool {
	for _, d := range deps {
		if d == nil {
			h.log.Error("route called without its dependency", "path", c.FullPath())
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotConfigured.Error()})
			return false
		}
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

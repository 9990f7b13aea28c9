package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/api"
	"github.com/esc4n0rx/StockSense/internal/config"
	"github.com/esc4n0rx/StockSense/internal/countsheet"
	"github.com/esc4n0rx/StockSense/internal/dashboard"
	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/domain/reference"
	"github.com/esc4n0rx/StockSense/internal/domain/rotativo"
	"github.com/esc4n0rx/StockSense/internal/infra/db"
	httpx "github.com/esc4n0rx/StockSense/internal/infra/http"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
	"github.com/esc4n0rx/StockSense/internal/ingest"
	"github.com/esc4n0rx/StockSense/internal/reconcile"
)

const defaultConfigPath = "config/example.yaml"

func main() {
	path := os.Getenv("STOCKSENSE_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Error("bad timezone", "tz", cfg.App.Timezone, "err", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx, cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	m := metrics.New()

	countsRepo := counts.NewRepo(pool)
	refRepo := reference.NewRepo(pool)
	rotRepo := rotativo.NewRepo(pool)

	resolver := reconcile.NewResolver(refRepo, log, reconcile.WithMetrics(m))
	rot := rotativo.NewService(rotRepo, refRepo, countsRepo,
		rotativo.NewCodeGenerator(cfg.Rotativo.CodePrefix, loc),
		cfg.Rotativo.UpdateWorkers, log, m)

	h := api.NewHandler(api.Deps{
		Pipeline:  reconcile.NewPipeline(resolver, log, m),
		Counts:    countsRepo,
		Dashboard: dashboard.NewService(countsRepo, cfg.Dashboard.PageSize, log),
		Tables:    refRepo,
		Loader:    ingest.NewLoader(refRepo, log, m),
		Rotativo:  rot,
		Sheets: countsheet.NewGenerator(refRepo, countsRepo, countsheet.Users{
			DP01: cfg.CountSheet.UserDP01,
			DP40: cfg.CountSheet.UserDP40,
		}, log),
		Today: func() string { return time.Now().In(loc).Format("2006-01-02") },
		Log:   log,
	})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = m.Handler()
	}
	srv := httpx.New(cfg.HTTP.Addr, api.NewRouter(h, log), metricsHandler)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

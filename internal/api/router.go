package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/infra/logger"
)

// NewRouter mounts every route under /api.
func NewRouter(h *Handler, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = logger.Discard()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	api := r.Group("/api")
	{
		api.POST("/calculos", h.Calculos)
		api.GET("/calculos_dashboard", h.CalculosDashboard)
		api.PUT("/salvar", h.Salvar)

		api.GET("/setores", h.ListSetores)
		api.POST("/setores", h.UploadSetores)
		api.GET("/estoque", h.ListEstoque)
		api.POST("/estoque", h.UploadEstoque)
		api.POST("/rotativo", h.UploadRotativo)

		api.POST("/generate", h.Generate)

		api.GET("/controle_rotativo", h.ListRotativo)
		api.POST("/controle_rotativo", h.CreateRotativo)
		api.GET("/controle_rotativo_update", h.CountDates)
		api.POST("/controle_rotativo_update", h.UpdateRotativo)
	}
	return r
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/reconcile"
)

type calculosRequest struct {
	Data []counts.CountRecord `json:"data" binding:"required"`
}

// Calculos enriches the posted count records and streams the result:
// a progress line, a success line, then the records as JSON.
func (h *Handler) Calculos(c *gin.Context) {
	if !h.ready(c, h.d.Pipeline) {
		return
	}
	var req calculosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "O campo 'data' deve ser um array")
		return
	}

	out := h.d.Pipeline.Enrich(c.Request.Context(), req.Data)
	sum := reconcile.Summarize(out)
	h.log.Info("batch reconciled",
		"records", sum.Records,
		"divergent", sum.Divergent,
		"total_adjustment", sum.TotalAdjustment.StringFixed(2))

	s := startStream(c)
	s.send("100%% - Processado %d de %d", len(out), len(req.Data))
	s.send(msgUploadOK)
	s.json(out)
}

func (h *Handler) CalculosDashboard(c *gin.Context) {
	if !h.ready(c, h.d.Dashboard) {
		return
	}
	sum, err := h.d.Dashboard.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type salvarRequest struct {
	Data []counts.EnrichedRecord `json:"data" binding:"required"`
}

// Salvar writes edited rows back, matching on id.
func (h *Handler) Salvar(c *gin.Context) {
	if !h.ready(c, h.d.Counts) {
		return
	}
	var req salvarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "O campo 'data' deve ser um array.")
		return
	}
	if err := h.d.Counts.Upsert(c.Request.Context(), req.Data); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registros atualizados com sucesso!", "rows": len(req.Data)})
}

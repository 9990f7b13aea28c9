package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/countsheet"
	"github.com/esc4n0rx/StockSense/internal/domain/rotativo"
)

func (h *Handler) ListRotativo(c *gin.Context) {
	if !h.ready(c, h.d.Rotativo) {
		return
	}
	items, err := h.d.Rotativo.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

type createRotativoRequest struct {
	Materiais []rotativo.MaterialInput `json:"materiais" binding:"required"`
}

func (h *Handler) CreateRotativo(c *gin.Context) {
	if !h.ready(c, h.d.Rotativo) {
		return
	}
	var req createRotativoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Lista de materiais inválida.")
		return
	}
	b, err := h.d.Rotativo.Create(c.Request.Context(), req.Materiais)
	if errors.Is(err, rotativo.ErrNoMaterials) {
		badRequest(c, "Lista de materiais inválida.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Itens inseridos com sucesso.",
		"cod_rotativo": b.CodRotativo,
		"data":         b.Data,
		"itens":        b.Items,
	})
}

// CountDates lists the dates that can be used to update a cyclic count.
func (h *Handler) CountDates(c *gin.Context) {
	if !h.ready(c, h.d.Rotativo) {
		return
	}
	dates, err := h.d.Rotativo.CountDates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"datas": dates})
}

type updateRotativoRequest struct {
	DataFeita string `json:"data_feita"`
}

func (h *Handler) UpdateRotativo(c *gin.Context) {
	if !h.ready(c, h.d.Rotativo) {
		return
	}
	var req updateRotativoRequest
	_ = c.ShouldBindJSON(&req)

	rep, err := h.d.Rotativo.UpdateStatus(c.Request.Context(), req.DataFeita)
	if errors.Is(err, rotativo.ErrNoDate) {
		badRequest(c, "Data não informada.")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Contagem atualizada.",
		"total":      rep.Total,
		"updated":    rep.Updated,
		"failed":     rep.Failed,
		"resultados": rep.Results,
	})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Generate builds the count sheet for the selected sources as an xlsx download.
func (h *Handler) Generate(c *gin.Context) {
	if !h.ready(c, h.d.Sheets) {
		return
	}
	var opts countsheet.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		badRequest(c, err.Error())
		return
	}

	lines, err := h.d.Sheets.Build(c.Request.Context(), opts)
	switch {
	case errors.Is(err, countsheet.ErrNoDeposit):
		badRequest(c, "O campo 'deposito' é obrigatório.")
		return
	case errors.Is(err, countsheet.ErrEmpty):
		badRequest(c, "Nenhum dado gerado com as opções selecionadas.")
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	data, err := countsheet.Write(lines)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="rotativo.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

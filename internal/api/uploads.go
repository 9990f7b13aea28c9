package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/esc4n0rx/StockSense/internal/ingest"
)

const (
	msgFileRequired   = `Campo "file" é obrigatório.`
	msgInvalidTable   = "Tabela inválida."
	msgTableRequired  = "Parâmetro 'table' é obrigatório."
	msgInvalidType    = "Tipo de upload inválido."
	msgTypeAndFile    = `Campos "type" e "file" são obrigatórios.`
	msgTableAndFile   = `Campos "table" e "file" são obrigatórios.`
	msgUploadOK       = "Upload realizado com sucesso!"
	msgStockUploadOK  = "Upload concluído com sucesso!"
	msgInsertFailedAt = "Erro ao inserir dados: %s"
)

// readUpload parses the multipart "file" field into spreadsheet rows.
func readUpload(c *gin.Context) ([]ingest.Row, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, msgFileRequired)
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	defer func() { _ = f.Close() }()

	rows, err := ingest.ReadRows(f)
	if err != nil {
		badRequest(c, "Arquivo inválido: "+err.Error())
		return nil, false
	}
	return rows, true
}

func (h *Handler) listTable(c *gin.Context, allowed func(string) bool) {
	if !h.ready(c, h.d.Tables) {
		return
	}
	table := c.Query("table")
	if table == "" {
		badRequest(c, msgTableRequired)
		return
	}
	if !allowed(table) {
		badRequest(c, msgInvalidTable)
		return
	}
	rows, err := h.d.Tables.ListRows(c.Request.Context(), table)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handler) ListSetores(c *gin.Context) { h.listTable(c, ingest.UploadTable) }

func (h *Handler) ListEstoque(c *gin.Context) { h.listTable(c, ingest.StockTable) }

// UploadSetores loads a reference or count table from a spreadsheet in one go.
func (h *Handler) UploadSetores(c *gin.Context) {
	if !h.ready(c, h.d.Loader) {
		return
	}
	table := c.PostForm("table")
	if table == "" {
		badRequest(c, msgTableAndFile)
		return
	}
	if !ingest.UploadTable(table) {
		badRequest(c, msgInvalidTable)
		return
	}
	rows, ok := readUpload(c)
	if !ok {
		return
	}
	b, err := ingest.PrepareTable(table, rows)
	if err != nil {
		badRequest(c, msgInvalidTable)
		return
	}
	n, err := h.d.Loader.Load(c.Request.Context(), b, ingest.DefaultBatchSize, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUploadOK, "rows": n})
}

// UploadEstoque loads a stock or cut export and streams progress per batch.
func (h *Handler) UploadEstoque(c *gin.Context) {
	if !h.ready(c, h.d.Loader) {
		return
	}
	kind := c.PostForm("type")
	if kind == "" {
		badRequest(c, msgTypeAndFile)
		return
	}
	rows, ok := readUpload(c)
	if !ok {
		return
	}
	b, err := ingest.PrepareStock(kind, rows)
	if err != nil {
		badRequest(c, msgInvalidType)
		return
	}
	h.streamLoad(c, b, ingest.DefaultBatchSize, msgStockUploadOK)
}

// UploadRotativo stores the counted lines of a cyclic-count export as count
// records dated today.
func (h *Handler) UploadRotativo(c *gin.Context) {
	if !h.ready(c, h.d.Loader) {
		return
	}
	rows, ok := readUpload(c)
	if !ok {
		return
	}
	b := ingest.PrepareCounts(rows, h.d.Today())
	h.log.Info("count upload parsed", "rows", len(rows), "counted", len(b.Rows))
	h.streamLoad(c, b, ingest.BatchSize(len(b.Rows)), msgUploadOK)
}

func (h *Handler) streamLoad(c *gin.Context, b ingest.Batch, size int, done string) {
	s := startStream(c)
	_, err := h.d.Loader.Load(c.Request.Context(), b, size, func(pct int) {
		s.send("%d%% concluído", pct)
	})
	if err != nil {
		s.send(msgInsertFailedAt, err.Error())
		return
	}
	s.send("%s", done)
}

package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/esc4n0rx/StockSense/internal/coerce"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownType  = errors.New("unknown upload type")
)

var schemas = map[string]Schema{
	"ss_estoque_wms": {Table: "ss_estoque_wms", Columns: []Column{
		{"centro", Text}, {"deposito", Text}, {"material", Text}, {"descricao", Text},
		{"pos_depos", Text}, {"estoque_disponivel", OptionalNumber}, {"umb", Text}, {"data_em", DotDate},
	}},
	"ss_estoque_mm": {Table: "ss_estoque_mm", Columns: []Column{
		{"material", Text}, {"descricao", Text}, {"data_em", DotDate}, {"data_ate", DotDate},
		{"saldo_inicial", Number}, {"qtds_entrada", Number}, {"qtds_saida", Number},
		{"estoque_final", Text}, {"umb", Text},
	}},
	"ss_corte_geral": {Table: "ss_corte_geral", Columns: []Column{
		{"material", Text}, {"descricao", Text}, {"dep", Text}, {"data", DotDate}, {"quantidade", Number},
	}},
	"ss_rotativo": {Table: "ss_rotativo", Columns: []Column{
		{"cod_posicao", Text}, {"material", Text}, {"descricao", Text}, {"um", Text},
		{"quantidade_informada", Number}, {"quantidade_contada", Number},
		{"status", Text}, {"usuario", Text}, {"data_rotativo", SlashDateTime},
	}},
	"ss_dados_cadastral": {Table: "ss_dados_cadastral", Columns: []Column{
		{"material", Text}, {"descricao", Text}, {"ean1", Text}, {"ean2", Text}, {"qtd_cx", OptionalNumber},
	}},
	"ss_mm60": {Table: "ss_mm60", Columns: []Column{
		{"material", Text}, {"descricao", Text}, {"preco", Number}, {"gcm", Number}, {"clav", Number},
		{"ult_modif", SlashDateTime}, {"criado_a", SlashDateTime},
	}},
	"ss_setores": {Table: "ss_setores", Columns: []Column{
		{"endereco", Text}, {"codigo", Text}, {"descricao", Text}, {"um", Text},
		{"contagem", OptionalNumber}, {"data_feita", Text},
		{"qtd_por_cx", OptionalNumber}, {"saldo", OptionalNumber}, {"diferenca", OptionalNumber},
		{"preco", OptionalNumber}, {"v_ajuste", OptionalNumber}, {"corte", Text}, {"setor", Text},
	}},
}

// Stock uploads are addressed by type, table uploads by table name.
var (
	stockTypes = map[string]string{
		"estoque_wms": "ss_estoque_wms",
		"estoque_mm":  "ss_estoque_mm",
		"corte":       "ss_corte_geral",
	}
	tableUploads = map[string]bool{
		"ss_rotativo":        true,
		"ss_dados_cadastral": true,
		"ss_mm60":            true,
		"ss_setores":         true,
	}
)

// StockTable reports whether table is one of the stock tables listed under /estoque.
func StockTable(table string) bool {
	for _, t := range stockTypes {
		if t == table {
			return true
		}
	}
	return false
}

// UploadTable reports whether table accepts uploads and listings under /setores.
func UploadTable(table string) bool { return tableUploads[table] }

// Batch is a set of rows ready to be written to one table.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]any
}

func build(s Schema, rows []Row) Batch {
	b := Batch{Table: s.Table, Columns: s.names(), Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		b.Rows = append(b.Rows, s.values(r))
	}
	return b
}

// PrepareStock maps a stock upload (estoque_wms, estoque_mm, corte) to its table.
func PrepareStock(kind string, rows []Row) (Batch, error) {
	table, ok := stockTypes[kind]
	if !ok {
		return Batch{}, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return build(schemas[table], rows), nil
}

func PrepareTable(table string, rows []Row) (Batch, error) {
	if !tableUploads[table] {
		return Batch{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return build(schemas[table], rows), nil
}

const statusCounted = "contado"

// PrepareCounts turns a cyclic-count export into count records dated today.
// Only rows whose status is "contado" are kept.
func PrepareCounts(rows []Row, today string) Batch {
	b := Batch{
		Table:   "ss_setores",
		Columns: []string{"endereco", "codigo", "descricao", "um", "contagem", "data_feita"},
		Rows:    [][]any{},
	}
	for _, r := range rows {
		if !strings.EqualFold(r["status"], statusCounted) {
			continue
		}
		b.Rows = append(b.Rows, []any{
			Text.convert(r["cod_posicao"]),
			Text.convert(r["material"]),
			Text.convert(r["descricao"]),
			Text.convert(r["um"]),
			coerce.String(r["quantidade_informada"]),
			today,
		})
	}
	return b
}

// BatchSize picks the insert chunk for count uploads.
func BatchSize(total int) int {
	switch {
	case total < 100:
		return 10
	case total < 500:
		return 50
	default:
		return 100
	}
}

const DefaultBatchSize = 100

package counts

import "github.com/esc4n0rx/StockSense/internal/coerce"

// CountRecord is one physical count observation (a row of ss_setores before enrichment).
type CountRecord struct {
	ID        int64        `json:"id,omitempty"`
	Codigo    coerce.Code  `json:"codigo"`
	Endereco  string       `json:"endereco"`
	Descricao string       `json:"descricao"`
	UM        string       `json:"um"`
	Contagem  coerce.Float `json:"contagem"`
	DataFeita string       `json:"data_feita"`
}

func (r CountRecord) Code() string { return string(r.Codigo) }

// Analysis holds the reconciliation columns computed from reference data.
type Analysis struct {
	QtdPorCx  float64 `json:"qtd_por_cx"`
	Saldo     float64 `json:"saldo"`
	Diferenca float64 `json:"diferenca"`
	Preco     float64 `json:"preco"`
	VAjuste   float64 `json:"v_ajuste"`
	Corte     string  `json:"corte"`
	Setor     string  `json:"setor"`
}

// EnrichedRecord is a CountRecord plus its Analysis, flattened in JSON.
type EnrichedRecord struct {
	CountRecord
	Analysis
}

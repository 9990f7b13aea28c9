package rotativo

import "github.com/esc4n0rx/StockSense/internal/coerce"

type Status string

const (
	StatusPending Status = "pendente"
	StatusOK      Status = "ok"
	StatusError   Status = "erro"
)

// Item is one material assigned to a cyclic count (inventario_rotativo).
type Item struct {
	ID            int64   `json:"id"`
	Codigo        string  `json:"codigo"`
	Descricao     string  `json:"descricao"`
	UnidadeMedida string  `json:"unidade_medida"`
	SaldoSAP      float64 `json:"saldo_sap"`
	Contagem      float64 `json:"contagem"`
	Data          string  `json:"data"`
	CodRotativo   string  `json:"cod_rotativo"`
	Status        Status  `json:"status"`
}

// MaterialInput is what a user picks when opening a new cyclic count.
type MaterialInput struct {
	Codigo        coerce.Code `json:"codigo"`
	Descricao     string      `json:"descricao"`
	UnidadeMedida string      `json:"unidade_medida"`
}

// Batch is the result of opening a cyclic count.
type Batch struct {
	CodRotativo string `json:"cod_rotativo"`
	Data        string `json:"data"`
	Items       []Item `json:"items"`
}

// StatusFor compares a count with the balance snapshot.
func StatusFor(contagem, saldoSAP float64) (float64, Status) {
	diferenca := contagem - saldoSAP
	if diferenca == 0 {
		return diferenca, StatusOK
	}
	return diferenca, StatusError
}

// UpdateResult is the outcome of one item in a status update.
type UpdateResult struct {
	ID        int64   `json:"id"`
	Codigo    string  `json:"codigo"`
	SaldoSAP  float64 `json:"saldo_sap"`
	Contagem  float64 `json:"contagem"`
	Diferenca float64 `json:"diferenca"`
	Status    Status  `json:"status"`
	Updated   bool    `json:"updated"`
	Error     string  `json:"error,omitempty"`
}

type UpdateReport struct {
	Date    string         `json:"data"`
	Total   int            `json:"total"`
	Updated int            `json:"updated"`
	Failed  int            `json:"failed"`
	Results []UpdateResult `json:"results"`
}

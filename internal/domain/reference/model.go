package reference

// BoxKey names the ss_dados_cadastral column a box-quantity lookup matches on.
type BoxKey string

const (
	KeyMaterial BoxKey = "material" // internal short code
	KeyEAN1     BoxKey = "ean1"
	KeyEAN2     BoxKey = "ean2"
)

func (k BoxKey) Valid() bool {
	switch k {
	case KeyMaterial, KeyEAN1, KeyEAN2:
		return true
	}
	return false
}

// Row is one (code, value) pair as stored; a code may appear in many rows.
type Row struct {
	Code  string
	Value float64
}

type CutRow struct {
	Code string
	Date string
}

// Cut is a row of ss_corte_geral.
type Cut struct {
	Material   string
	Descricao  string
	Dep        string
	Data       string
	Quantidade float64
}

// Position is where a material sits in the warehouse (ss_estoque_wms).
type Position struct {
	Material string
	Pos      string
	UM       string
}

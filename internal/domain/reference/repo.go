package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnknownTable = errors.New("unknown table")

// Tables that may be listed or bulk-loaded by name.
var Tables = map[string]bool{
	"ss_setores":          true,
	"ss_dados_cadastral":  true,
	"ss_estoque_wms":      true,
	"ss_estoque_mm":       true,
	"ss_mm60":             true,
	"ss_corte_geral":      true,
	"ss_rotativo":         true,
	"inventario_rotativo": true,
}

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

/* Lookups used by reconciliation */

// BoxQuantities returns qtd_cx for rows whose key column matches one of codes.
func (r *Repo) BoxQuantities(ctx context.Context, key BoxKey, codes []string) ([]Row, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("box key %q", key)
	}
	col := pgx.Identifier{string(key)}.Sanitize()
	return r.rows(ctx, `
		SELECT `+col+`, COALESCE(qtd_cx,0)
		FROM ss_dados_cadastral
		WHERE `+col+` = ANY($1)
		ORDER BY id
	`, codes)
}

// Balances returns every ss_estoque_wms row for codes; callers sum per code.
func (r *Repo) Balances(ctx context.Context, codes []string) ([]Row, error) {
	return r.rows(ctx, `
		SELECT material, COALESCE(estoque_disponivel,0)
		FROM ss_estoque_wms
		WHERE material = ANY($1)
	`, codes)
}

func (r *Repo) Prices(ctx context.Context, codes []string) ([]Row, error) {
	return r.rows(ctx, `
		SELECT material, COALESCE(preco,0)
		FROM ss_mm60
		WHERE material = ANY($1)
		ORDER BY id
	`, codes)
}

// CutDates returns cut rows newest first.
func (r *Repo) CutDates(ctx context.Context, codes []string) ([]CutRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT material, data
		FROM ss_corte_geral
		WHERE material = ANY($1) AND data IS NOT NULL
		ORDER BY data DESC
	`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CutRow
	for rows.Next() {
		var c CutRow
		if err := rows.Scan(&c.Code, &c.Date); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) rows(ctx context.Context, sql string, codes []string) ([]Row, error) {
	rows, err := r.pool.Query(ctx, sql, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Code, &row.Value); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SumBalances aggregates the available balance per code in one query.
// Codes without rows are absent from the map.
func (r *Repo) SumBalances(ctx context.Context, codes []string) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT material, SUM(COALESCE(estoque_disponivel,0))
		FROM ss_estoque_wms
		WHERE material = ANY($1)
		GROUP BY material
	`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64, len(codes))
	for rows.Next() {
		var (
			code string
			sum  float64
		)
		if err := rows.Scan(&code, &sum); err != nil {
			return nil, err
		}
		out[code] = sum
	}
	return out, rows.Err()
}

/* Count sheet sources */

// Positions maps each code to its first known warehouse position.
func (r *Repo) Positions(ctx context.Context, codes []string) (map[string]Position, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (material) material, COALESCE(pos_depos,''), COALESCE(umb,'')
		FROM ss_estoque_wms
		WHERE material = ANY($1)
		ORDER BY material, id
	`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Position, len(codes))
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Material, &p.Pos, &p.UM); err != nil {
			return nil, err
		}
		out[p.Material] = p
	}
	return out, rows.Err()
}

// LatestCutDate returns the newest cut date for a deposit, "" if it has none.
func (r *Repo) LatestCutDate(ctx context.Context, dep string) (string, error) {
	var d *string
	err := r.pool.QueryRow(ctx, `
		SELECT MAX(data) FROM ss_corte_geral WHERE dep = $1
	`, dep).Scan(&d)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", nil
	}
	return *d, nil
}

func (r *Repo) CutsOn(ctx context.Context, dep, date string) ([]Cut, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(material,''), COALESCE(descricao,''), COALESCE(dep,''), COALESCE(data,''), COALESCE(quantidade,0)
		FROM ss_corte_geral
		WHERE dep = $1 AND data = $2
		ORDER BY id
	`, dep, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cut
	for rows.Next() {
		var c Cut
		if err := rows.Scan(&c.Material, &c.Descricao, &c.Dep, &c.Data, &c.Quantidade); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* Generic table access for uploads and listings */

// InsertRows bulk-loads rows into table using COPY. Values must line up with columns.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if !Tables[table] {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return r.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// ListRows returns the whole table as column-keyed maps ordered by id.
func (r *Repo) ListRows(ctx context.Context, table string) ([]map[string]any, error) {
	if !Tables[table] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	rows, err := r.pool.Query(ctx, `SELECT * FROM `+pgx.Identifier{table}.Sanitize()+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}

package rotativo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("rotativo item not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// InsertItems writes a whole batch with one COPY; either every row lands or none does.
func (r *Repo) InsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"inventario_rotativo"},
		[]string{"codigo", "descricao", "unidade_medida", "saldo_sap", "contagem", "data", "cod_rotativo", "status"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{
				it.Codigo, it.Descricao, it.UnidadeMedida, it.SaldoSAP, it.Contagem,
				it.Data, it.CodRotativo, string(it.Status),
			}, nil
		}),
	)
	return err
}

const selectItem = `
	SELECT id, codigo, COALESCE(descricao,''), COALESCE(unidade_medida,''),
	       saldo_sap, contagem, data, cod_rotativo, status
	FROM inventario_rotativo
`

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Item, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var (
			it     Item
			status string
		)
		if err := rows.Scan(
			&it.ID, &it.Codigo, &it.Descricao, &it.UnidadeMedida,
			&it.SaldoSAP, &it.Contagem, &it.Data, &it.CodRotativo, &status,
		); err != nil {
			return nil, err
		}
		it.Status = Status(status)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) ItemsOn(ctx context.Context, date string) ([]Item, error) {
	return r.list(ctx, selectItem+` WHERE data = $1 ORDER BY id`, date)
}

// ListItems returns every item, newest batches first.
func (r *Repo) ListItems(ctx context.Context) ([]Item, error) {
	return r.list(ctx, selectItem+` ORDER BY data DESC, cod_rotativo, id`)
}

func (r *Repo) UpdateCount(ctx context.Context, id int64, contagem float64, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inventario_rotativo
		SET contagem = $2, status = $3
		WHERE id = $1
	`, id, contagem, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

package counts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/esc4n0rx/StockSense/internal/coerce"
)

// Repo reads and writes ss_setores.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Enrichment columns are NULL until a reconciled row is saved back.
const selectRecord = `
	SELECT id, COALESCE(codigo,''), COALESCE(endereco,''), COALESCE(descricao,''), COALESCE(um,''),
	       COALESCE(contagem,0), COALESCE(data_feita,''),
	       COALESCE(qtd_por_cx,0), COALESCE(saldo,0), COALESCE(diferenca,0), COALESCE(preco,0),
	       COALESCE(v_ajuste,0), COALESCE(corte,''), COALESCE(setor,'')
	FROM ss_setores
`

func scanRecord(row pgx.Row) (EnrichedRecord, error) {
	var (
		r        EnrichedRecord
		codigo   string
		contagem float64
	)
	err := row.Scan(
		&r.ID, &codigo, &r.Endereco, &r.Descricao, &r.UM,
		&contagem, &r.DataFeita,
		&r.QtdPorCx, &r.Saldo, &r.Diferenca, &r.Preco,
		&r.VAjuste, &r.Corte, &r.Setor,
	)
	r.Codigo = coerce.Code(codigo)
	r.Contagem = coerce.Float(contagem)
	return r, err
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]EnrichedRecord, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EnrichedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Page returns rows in insertion order; callers stop when a page comes back short.
func (r *Repo) Page(ctx context.Context, offset, limit int) ([]EnrichedRecord, error) {
	return r.query(ctx, selectRecord+` ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *Repo) ListByDate(ctx context.Context, date string) ([]EnrichedRecord, error) {
	return r.query(ctx, selectRecord+` WHERE data_feita = $1 ORDER BY id`, date)
}

// ZeroCountsOn lists the records of a count date whose counted quantity is 0.
func (r *Repo) ZeroCountsOn(ctx context.Context, date string) ([]EnrichedRecord, error) {
	return r.query(ctx, selectRecord+` WHERE data_feita = $1 AND contagem = 0 ORDER BY id`, date)
}

// Dates lists distinct count dates, newest first.
func (r *Repo) Dates(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT data_feita
		FROM ss_setores
		WHERE data_feita IS NOT NULL
		ORDER BY data_feita DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestDate returns the most recent count date, "" when there are no records.
func (r *Repo) LatestDate(ctx context.Context) (string, error) {
	var d string
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(data_feita),'') FROM ss_setores`).Scan(&d)
	return d, err
}

// Upsert writes edited rows back. Rows with an id replace the stored row,
// rows without one are inserted. Everything runs in one transaction.
func (r *Repo) Upsert(ctx context.Context, recs []EnrichedRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range recs {
		args := []any{
			rec.Endereco, rec.Code(), rec.Descricao, rec.UM, rec.Contagem.Float64(), rec.DataFeita,
			rec.QtdPorCx, rec.Saldo, rec.Diferenca, rec.Preco, rec.VAjuste, rec.Corte, rec.Setor,
		}
		if rec.ID == 0 {
			batch.Queue(`
				INSERT INTO ss_setores
				(endereco, codigo, descricao, um, contagem, data_feita,
				 qtd_por_cx, saldo, diferenca, preco, v_ajuste, corte, setor)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			`, args...)
			continue
		}
		batch.Queue(`
			INSERT INTO ss_setores
			(id, endereco, codigo, descricao, um, contagem, data_feita,
			 qtd_por_cx, saldo, diferenca, preco, v_ajuste, corte, setor)
			VALUES ($14,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				endereco   = EXCLUDED.endereco,
				codigo     = EXCLUDED.codigo,
				descricao  = EXCLUDED.descricao,
				um         = EXCLUDED.um,
				contagem   = EXCLUDED.contagem,
				data_feita = EXCLUDED.data_feita,
				qtd_por_cx = EXCLUDED.qtd_por_cx,
				saldo      = EXCLUDED.saldo,
				diferenca  = EXCLUDED.diferenca,
				preco      = EXCLUDED.preco,
				v_ajuste   = EXCLUDED.v_ajuste,
				corte      = EXCLUDED.corte,
				setor      = EXCLUDED.setor
		`, append(args, rec.ID)...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range recs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert row %d (codigo %s): %w", i, recs[i].Code(), err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Package countsheet builds the spreadsheet handed to operators for a new
// round of counting: items cut on the latest cut date, items counted as zero
// on the latest count date, and anything added by hand.
package countsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/esc4n0rx/StockSense/internal/coerce"
	"github.com/esc4n0rx/StockSense/internal/domain/counts"
	"github.com/esc4n0rx/StockSense/internal/domain/reference"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
)

const (
	DepositDP01 = "DP01"
	DepositDP40 = "DP40" // cold area, addresses starting with H3C

	SheetName = "Rotativo"

	noPosition       = "Posição não encontrada"
	noAddress        = "Endereço não encontrado"
	noMaterial       = "Material não encontrado"
	noManualPosition = "Posição não informada"
	noManualMaterial = "Material não informado"
)

var (
	ErrNoDeposit = errors.New("deposito is required")
	ErrEmpty     = errors.New("no lines generated for the selected options")
)

var header = []any{"cod_posicao", "material", "descricao", "um", "deposito", "usuario"}

type ManualItem struct {
	Posicao   string      `json:"posicao"`
	Material  coerce.Code `json:"material"`
	Descricao string      `json:"descricao"`
	UM        string      `json:"um"`
}

type Options struct {
	Deposito       string       `json:"deposito"`
	IncluirCorte   bool         `json:"incluirCorte"`
	IncluirZerados bool         `json:"incluirZerados"`
	IncluirManual  bool         `json:"incluirManual"`
	ManualItems    []ManualItem `json:"manualItems"`
}

// Line is one row of the generated sheet.
type Line struct {
	CodPosicao string
	Material   string
	Descricao  string
	UM         string
	Deposito   string
	Usuario    string
}

type CutSource interface {
	LatestCutDate(ctx context.Context, dep string) (string, error)
	CutsOn(ctx context.Context, dep, date string) ([]reference.Cut, error)
	Positions(ctx context.Context, codes []string) (map[string]reference.Position, error)
}

type CountSource interface {
	LatestDate(ctx context.Context) (string, error)
	ZeroCountsOn(ctx context.Context, date string) ([]counts.EnrichedRecord, error)
}

// Users names the operator assigned to each deposit.
type Users struct {
	DP01 string
	DP40 string
}

func (u Users) For(dep string) string {
	if dep == DepositDP40 {
		return u.DP40
	}
	return u.DP01
}

type Generator struct {
	cuts   CutSource
	counts CountSource
	users  Users
	log    *slog.Logger
}

func NewGenerator(cuts CutSource, cnt CountSource, users Users, log *slog.Logger) *Generator {
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{cuts: cuts, counts: cnt, users: users, log: log}
}

// Build collects the lines for opts. A failing source is logged and its
// section left out; only an empty result is an error.
func (g *Generator) Build(ctx context.Context, opts Options) ([]Line, error) {
	if opts.Deposito == "" {
		return nil, ErrNoDeposit
	}
	var lines []Line

	if opts.IncluirCorte {
		cut, err := g.cutLines(ctx, opts.Deposito)
		if err != nil {
			g.log.Warn("count sheet: cut section skipped", "deposito", opts.Deposito, "err", err)
		}
		lines = append(lines, cut...)
	}

	if opts.IncluirZerados {
		zero, err := g.zeroLines(ctx)
		if err != nil {
			g.log.Warn("count sheet: zero-count section skipped", "err", err)
		}
		lines = append(lines, zero...)
	}

	if opts.IncluirManual {
		user := g.users.For(opts.Deposito)
		for _, it := range opts.ManualItems {
			lines = append(lines, Line{
				CodPosicao: orDefault(it.Posicao, noManualPosition),
				Material:   orDefault(it.Material.String(), noManualMaterial),
				Descricao:  it.Descricao,
				UM:         it.UM,
				Deposito:   opts.Deposito,
				Usuario:    user,
			})
		}
	}

	if len(lines) == 0 {
		return nil, ErrEmpty
	}
	return lines, nil
}

func (g *Generator) cutLines(ctx context.Context, dep string) ([]Line, error) {
	date, err := g.cuts.LatestCutDate(ctx, dep)
	if err != nil || date == "" {
		return nil, err
	}
	cuts, err := g.cuts.CutsOn(ctx, dep, date)
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(cuts))
	for i, c := range cuts {
		codes[i] = c.Material
	}
	pos, err := g.cuts.Positions(ctx, codes)
	if err != nil {
		g.log.Warn("count sheet: positions unavailable", "err", err)
	}

	user := g.users.For(dep)
	out := make([]Line, 0, len(cuts))
	for _, c := range cuts {
		p := pos[c.Material]
		out = append(out, Line{
			CodPosicao: orDefault(p.Pos, noPosition),
			Material:   c.Material,
			Descricao:  c.Descricao,
			UM:         p.UM,
			Deposito:   dep,
			Usuario:    user,
		})
	}
	return out, nil
}

func (g *Generator) zeroLines(ctx context.Context) ([]Line, error) {
	date, err := g.counts.LatestDate(ctx)
	if err != nil || date == "" {
		return nil, err
	}
	recs, err := g.counts.ZeroCountsOn(ctx, date)
	if err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(recs))
	for _, r := range recs {
		dep := DepositDP01
		if counts.IsPerishable(r.Endereco) {
			dep = DepositDP40
		}
		out = append(out, Line{
			CodPosicao: orDefault(r.Endereco, noAddress),
			Material:   orDefault(r.Code(), noMaterial),
			Descricao:  r.Descricao,
			UM:         r.UM,
			Deposito:   dep,
			Usuario:    g.users.For(dep),
		})
	}
	return out, nil
}

// Write renders lines as an xlsx workbook with a single "Rotativo" sheet.
func Write(lines []Line) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{l.CodPosicao, l.Material, l.Descricao, l.UM, l.Deposito, l.Usuario}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Package ingest turns uploaded spreadsheets into rows for the reference and
// count tables and loads them in batches.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptySheet = errors.New("spreadsheet has no header row")

// Row is one spreadsheet line keyed by trimmed header name.
type Row map[string]string

// ReadRows parses the first sheet of an xlsx file. The first line is the
// header; blank lines are skipped. Cells keep their raw value so numbers are
// not mangled by display formats.
func ReadRows(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	lines, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptySheet
	}

	header := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		header[i] = strings.TrimSpace(h)
	}

	out := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := Row{}
		blank := true
		for i, cell := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				blank = false
			}
			row[header[i]] = v
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out, nil
}

package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/esc4n0rx/StockSense/internal/coerce"
)

// Kind says how a spreadsheet cell becomes a column value.
type Kind int

const (
	Text           Kind = iota // trimmed string, NULL when blank
	Number                     // parse-or-default, blank is 0
	OptionalNumber             // parse-or-default, blank stays NULL
	DotDate                    // dd.mm.yyyy to yyyy-mm-dd
	SlashDateTime              // dd/mm/yyyy hh:mm:ss to yyyy-mm-dd hh:mm:ss
)

type Column struct {
	Name string
	Kind Kind
}

type Schema struct {
	Table   string
	Columns []Column
}

func (s Schema) names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

func (s Schema) values(r Row) []any {
	out := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Kind.convert(r[c.Name])
	}
	return out
}

func (k Kind) convert(v string) any {
	switch k {
	case Number:
		return coerce.String(v)
	case OptionalNumber:
		if v == "" {
			return nil
		}
		return coerce.String(v)
	}
	if v == "" {
		return nil
	}
	switch k {
	case DotDate:
		return dotDate(v)
	case SlashDateTime:
		return slashDateTime(v)
	}
	return v
}

// dotDate converts "1.5.2024" to "2024-05-01". Excel date serials are
// converted too; anything else passes through unchanged.
func dotDate(v string) string {
	if t, ok := serialDate(v); ok {
		return t.Format("2006-01-02")
	}
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return v
	}
	return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
}

// slashDateTime converts "1/5/2024 08:30:00" to "2024-05-01 08:30:00".
// Values without a time part pass through unchanged.
func slashDateTime(v string) string {
	if t, ok := serialDate(v); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	datePart, timePart, found := strings.Cut(v, " ")
	if !found || timePart == "" {
		return v
	}
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return v
	}
	return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0]) + " " + strings.TrimSpace(timePart)
}

func serialDate(v string) (time.Time, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

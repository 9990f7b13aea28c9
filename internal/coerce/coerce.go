// Package coerce is the single place where loosely typed input (JSON bodies,
// spreadsheet cells) becomes numbers and strings. Malformed numbers become 0;
// nothing here ever returns an error to the caller.
package coerce

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Number converts v to a finite float64, defaulting to 0.
func Number(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return String(x)
	case json.Number:
		return String(string(x))
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return finite(f)
}

// String parses a numeric string. A comma is accepted as decimal separator.
func String(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text renders v as a trimmed string; numbers keep their shortest form.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Float is a float64 that decodes from any JSON value using Number.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	v, ok := decodeAny(b)
	if !ok {
		*f = 0
		return nil
	}
	*f = Float(Number(v))
	return nil
}

func (f Float) Float64() float64 { return float64(f) }

// Code is a string that also accepts JSON numbers (material codes often
// arrive as numbers from spreadsheets).
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	v, ok := decodeAny(b)
	if !ok {
		*c = ""
		return nil
	}
	*c = Code(Text(v))
	return nil
}

func (c Code) String() string { return string(c) }

func decodeAny(b []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

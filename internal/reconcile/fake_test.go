package reconcile

import (
	"context"
	"sync"

	"github.com/esc4n0rx/StockSense/internal/domain/reference"
)

type call struct {
	lookup string
	codes  []string
}

// fakeSource serves reference rows from memory and records every query.
type fakeSource struct {
	mu    sync.Mutex
	calls []call

	box      map[reference.BoxKey][]reference.Row
	balances []reference.Row
	prices   []reference.Row
	cuts     []reference.CutRow
	fail     map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{box: map[reference.BoxKey][]reference.Row{}, fail: map[string]error{}}
}

func (f *fakeSource) record(lookup string, codes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{lookup: lookup, codes: append([]string(nil), codes...)})
	return f.fail[lookup]
}

func filter(rows []reference.Row, codes []string) []reference.Row {
	in := map[string]bool{}
	for _, c := range codes {
		in[c] = true
	}
	var out []reference.Row
	for _, r := range rows {
		if in[r.Code] {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeSource) BoxQuantities(_ context.Context, key reference.BoxKey, codes []string) ([]reference.Row, error) {
	if err := f.record("box_"+string(key), codes); err != nil {
		return nil, err
	}
	return filter(f.box[key], codes), nil
}

func (f *fakeSource) Balances(_ context.Context, codes []string) ([]reference.Row, error) {
	if err := f.record("balance", codes); err != nil {
		return nil, err
	}
	return filter(f.balances, codes), nil
}

func (f *fakeSource) Prices(_ context.Context, codes []string) ([]reference.Row, error) {
	if err := f.record("price", codes); err != nil {
		return nil, err
	}
	return filter(f.prices, codes), nil
}

func (f *fakeSource) CutDates(_ context.Context, codes []string) ([]reference.CutRow, error) {
	if err := f.record("cut", codes); err != nil {
		return nil, err
	}
	in := map[string]bool{}
	for _, c := range codes {
		in[c] = true
	}
	var out []reference.CutRow
	for _, r := range f.cuts {
		if in[r.Code] {
			out = append(out, r)
		}
	}
	return out, nil
}

// callsTo returns the code lists passed to one lookup, in call order.
func (f *fakeSource) callsTo(lookup string) [][]string {
	var out [][]string
	for _, c := range f.calls {
		if c.lookup == lookup {
			out = append(out, c.codes)
		}
	}
	return out
}

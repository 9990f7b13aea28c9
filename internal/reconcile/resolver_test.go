package reconcile

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esc4n0rx/StockSense/internal/domain/reference"
	"github.com/esc4n0rx/StockSense/internal/infra/logger"
	"github.com/esc4n0rx/StockSense/internal/infra/metrics"
)

func TestClassifyByLength_Boundary(t *testing.T) {
	classify := ClassifyByLength(DefaultShortCodeMaxLen)

	tests := []struct {
		code string
		want CodeClass
	}{
		{"1", ShortCode},
		{"123456", ShortCode},
		{"ABC123", ShortCode},
		{"1234567", LongCode},
		{"7891234567890", LongCode},
		{"ÇÃO123", ShortCode},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.code))
		})
	}
}

func TestResolver_BoxStrategies(t *testing.T) {
	src := newFakeSource()
	src.box[reference.KeyMaterial] = []reference.Row{{Code: "123456", Value: 12}}
	src.box[reference.KeyEAN1] = []reference.Row{
		{Code: "1234567", Value: 3},
		{Code: "7890000000011", Value: 6},
	}
	src.box[reference.KeyEAN2] = []reference.Row{
		{Code: "7890000000011", Value: 99},
		{Code: "7890000000028", Value: 24},
	}

	res := NewResolver(src, nil)
	lk := res.Resolve(context.Background(),
		[]string{"123456", "1234567", "7890000000011", "7890000000028", "", "123456"})

	assert.Equal(t, map[string]float64{
		"123456":        12,
		"1234567":       3,
		"7890000000011": 6,
		"7890000000028": 24,
	}, lk.BoxQty)

	// Short codes only ever hit the material column, long ones never do.
	assert.Equal(t, [][]string{{"123456"}}, src.callsTo("box_material"))
	assert.Equal(t, [][]string{{"1234567", "7890000000011", "7890000000028"}}, src.callsTo("box_ean1"))
	// Codes found by ean1 are not looked up again.
	assert.Equal(t, [][]string{{"7890000000028"}}, src.callsTo("box_ean2"))
}

func TestResolver_SkipsSecondKeyWhenAllResolved(t *testing.T) {
	src := newFakeSource()
	src.box[reference.KeyEAN1] = []reference.Row{{Code: "7890000000011", Value: 6}}

	NewResolver(src, nil).Resolve(context.Background(), []string{"7890000000011"})

	assert.Len(t, src.callsTo("box_ean1"), 1)
	assert.Empty(t, src.callsTo("box_ean2"))
	assert.Empty(t, src.callsTo("box_material"))
}

func TestResolver_FullSetLookups(t *testing.T) {
	src := newFakeSource()
	src.balances = []reference.Row{
		{Code: "123456", Value: 5},
		{Code: "123456", Value: 3},
		{Code: "7890000000011", Value: 1},
	}
	src.prices = []reference.Row{
		{Code: "123456", Value: 2.0},
		{Code: "123456", Value: 2.5},
	}
	src.cuts = []reference.CutRow{
		{Code: "123456", Date: "2024-05-01"},
		{Code: "123456", Date: "2024-04-01"},
		{Code: "123456", Date: "2024-05-01"},
		{Code: "7890000000011", Date: "2023-12-31"},
	}

	lk := NewResolver(src, nil).Resolve(context.Background(), []string{"123456", "7890000000011"})

	assert.Equal(t, map[string]float64{"123456": 8, "7890000000011": 1}, lk.Balance)
	assert.Equal(t, map[string]float64{"123456": 2.5}, lk.Price)
	assert.Equal(t, map[string]string{"123456": "2024-05-01", "7890000000011": "2023-12-31"}, lk.Cut)

	for _, lookup := range []string{"balance", "price", "cut"} {
		assert.Equal(t, [][]string{{"123456", "7890000000011"}}, src.callsTo(lookup), lookup)
	}
}

func TestResolver_EmptyInputIssuesNoQueries(t *testing.T) {
	src := newFakeSource()
	res := NewResolver(src, nil)

	lk := res.Resolve(context.Background(), nil)
	assert.Empty(t, lk.BoxQty)
	assert.NotNil(t, lk.Balance)

	res.Resolve(context.Background(), []string{"", ""})
	assert.Empty(t, src.calls)
}

func TestResolver_FailedLookupDegrades(t *testing.T) {
	src := newFakeSource()
	src.box[reference.KeyEAN2] = []reference.Row{{Code: "7890000000011", Value: 24}}
	src.prices = []reference.Row{{Code: "7890000000011", Value: 1.5}}
	src.fail["balance"] = errors.New("connection reset")
	src.fail["box_ean1"] = errors.New("timeout")

	var buf bytes.Buffer
	m := metrics.New()
	res := NewResolver(src, logger.NewWithWriter("test", &buf), WithMetrics(m))

	lk := res.Resolve(context.Background(), []string{"7890000000011"})

	assert.Empty(t, lk.Balance)
	assert.Equal(t, 1.5, lk.Price["7890000000011"])
	// ean1 failing leaves the code pending, so ean2 still gets a chance.
	assert.Equal(t, 24.0, lk.BoxQty["7890000000011"])

	assert.Contains(t, buf.String(), "reference lookup failed")
	assert.Contains(t, buf.String(), "connection reset")

	n, err := testutil.GatherAndCount(m.Registry(), "stocksense_reconcile_lookup_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestResolver_CustomPolicy(t *testing.T) {
	src := newFakeSource()
	src.box[reference.KeyEAN2] = []reference.Row{{Code: "ABC", Value: 7}}

	everythingLong := func(string) CodeClass { return LongCode }
	res := NewResolver(src, nil,
		WithClassifier(everythingLong),
		WithBoxStrategies(BoxStrategies{LongCode: {reference.KeyEAN2}}),
	)

	lk := res.Resolve(context.Background(), []string{"ABC"})
	assert.Equal(t, 7.0, lk.BoxQty["ABC"])
	assert.Empty(t, src.callsTo("box_material"))
	assert.Empty(t, src.callsTo("box_ean1"))
}

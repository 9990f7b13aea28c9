package rotativo

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esc4n0rx/StockSense/internal/coerce"
	"github.com/esc4n0rx/StockSense/internal/domain/counts"
)

type fakeItems struct {
	mu        sync.Mutex
	items     []Item
	insertErr error
	failIDs   map[int64]error
	inserts   int
	updates   map[int64]Item
}

func (f *fakeItems) InsertItems(_ context.Context, items []Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, it := range items {
		it.ID = int64(len(f.items) + 1)
		f.items = append(f.items, it)
	}
	return nil
}

func (f *fakeItems) ItemsOn(_ context.Context, date string) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if it.Data == date {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) ListItems(context.Context) ([]Item, error) { return f.items, nil }

func (f *fakeItems) UpdateCount(_ context.Context, id int64, contagem float64, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	if f.updates == nil {
		f.updates = map[int64]Item{}
	}
	f.updates[id] = Item{ID: id, Contagem: contagem, Status: status}
	return nil
}

type fakeBalances struct {
	sums  map[string]float64
	err   error
	calls [][]string
}

func (f *fakeBalances) SumBalances(_ context.Context, codes []string) (map[string]float64, error) {
	f.calls = append(f.calls, codes)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]float64{}
	for _, c := range codes {
		if v, ok := f.sums[c]; ok {
			out[c] = v
		}
	}
	return out, nil
}

type fakeCounts struct {
	byDate map[string][]counts.EnrichedRecord
	calls  int
}

func (f *fakeCounts) ListByDate(_ context.Context, date string) ([]counts.EnrichedRecord, error) {
	f.calls++
	return f.byDate[date], nil
}

func (f *fakeCounts) Dates(context.Context) ([]string, error) {
	var out []string
	for d := range f.byDate {
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func counted(code string, qty float64) counts.EnrichedRecord {
	return counts.EnrichedRecord{CountRecord: counts.CountRecord{Codigo: coerce.Code(code), Contagem: coerce.Float(qty)}}
}

func fixedCodes() *CodeGenerator {
	g := NewCodeGenerator(DefaultCodePrefix, time.UTC)
	g.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	g.intn = func(int) int { return 234 }
	return g
}

func newService(items *fakeItems, bal *fakeBalances, cnt *fakeCounts) *Service {
	return NewService(items, bal, cnt, fixedCodes(), 4, nil, nil)
}

func TestCreate_NoBalances(t *testing.T) {
	items := &fakeItems{}
	bal := &fakeBalances{}
	svc := newService(items, bal, &fakeCounts{})

	b, err := svc.Create(context.Background(), []MaterialInput{{Codigo: "X1"}, {Codigo: "X2"}})
	require.NoError(t, err)

	assert.Equal(t, "rotativo_ROTATIVO20240501_1234", b.CodRotativo)
	assert.Equal(t, "2024-05-01", b.Data)
	require.Len(t, b.Items, 2)
	for _, it := range b.Items {
		assert.Equal(t, 0.0, it.SaldoSAP)
		assert.Equal(t, 0.0, it.Contagem)
		assert.Equal(t, StatusPending, it.Status)
		assert.Equal(t, b.CodRotativo, it.CodRotativo)
		assert.Equal(t, "2024-05-01", it.Data)
	}
	assert.Equal(t, 1, items.inserts)
	assert.Equal(t, [][]string{{"X1", "X2"}}, bal.calls)
}

func TestCreate_SnapshotsBalances(t *testing.T) {
	items := &fakeItems{}
	bal := &fakeBalances{sums: map[string]float64{"123456": 8}}
	svc := newService(items, bal, &fakeCounts{})

	b, err := svc.Create(context.Background(), []MaterialInput{
		{Codigo: "123456", Descricao: "ARROZ", UnidadeMedida: "CX"},
		{Codigo: ""},
		{Codigo: "654321"},
	})
	require.NoError(t, err)
	require.Len(t, b.Items, 2)
	assert.Equal(t, 8.0, b.Items[0].SaldoSAP)
	assert.Equal(t, "ARROZ", b.Items[0].Descricao)
	assert.Equal(t, "CX", b.Items[0].UnidadeMedida)
	assert.Equal(t, 0.0, b.Items[1].SaldoSAP)
}

func TestCreate_Errors(t *testing.T) {
	t.Run("no materials", func(t *testing.T) {
		svc := newService(&fakeItems{}, &fakeBalances{}, &fakeCounts{})
		_, err := svc.Create(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoMaterials)

		_, err = svc.Create(context.Background(), []MaterialInput{{Codigo: ""}})
		assert.ErrorIs(t, err, ErrNoMaterials)
	})

	t.Run("insert failure aborts", func(t *testing.T) {
		boom := errors.New("duplicate key")
		svc := newService(&fakeItems{insertErr: boom}, &fakeBalances{}, &fakeCounts{})
		_, err := svc.Create(context.Background(), []MaterialInput{{Codigo: "X1"}})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("balance failure aborts", func(t *testing.T) {
		items := &fakeItems{}
		svc := newService(items, &fakeBalances{err: errors.New("down")}, &fakeCounts{})
		_, err := svc.Create(context.Background(), []MaterialInput{{Codigo: "X1"}})
		assert.Error(t, err)
		assert.Zero(t, items.inserts)
	})
}

func TestUpdateStatus(t *testing.T) {
	items := &fakeItems{items: []Item{
		{ID: 1, Codigo: "A", SaldoSAP: 10, Data: "2024-05-01", Status: StatusPending},
		{ID: 2, Codigo: "B", SaldoSAP: 10, Data: "2024-05-01", Status: StatusPending},
		{ID: 3, Codigo: "C", SaldoSAP: 4, Data: "2024-05-01", Status: StatusPending},
		{ID: 4, Codigo: "D", SaldoSAP: 0, Data: "2024-05-01", Status: StatusPending},
		{ID: 5, Codigo: "A", SaldoSAP: 10, Data: "2024-04-01", Status: StatusPending},
	}}
	cnt := &fakeCounts{byDate: map[string][]counts.EnrichedRecord{
		"2024-05-01": {counted("A", 10), counted("B", 1), counted("B", 7)},
	}}
	svc := newService(items, &fakeBalances{}, cnt)

	rep, err := svc.UpdateStatus(context.Background(), "2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, 1, cnt.calls)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 4, rep.Updated)
	assert.Zero(t, rep.Failed)

	byCode := map[string]UpdateResult{}
	for _, r := range rep.Results {
		byCode[r.Codigo] = r
	}
	assert.Equal(t, StatusOK, byCode["A"].Status)
	assert.Equal(t, 0.0, byCode["A"].Diferenca)
	// Last count for a code wins.
	assert.Equal(t, 7.0, byCode["B"].Contagem)
	assert.Equal(t, -3.0, byCode["B"].Diferenca)
	assert.Equal(t, StatusError, byCode["B"].Status)
	// Not counted at all.
	assert.Equal(t, 0.0, byCode["C"].Contagem)
	assert.Equal(t, StatusError, byCode["C"].Status)
	assert.Equal(t, StatusOK, byCode["D"].Status)

	assert.Equal(t, StatusOK, items.updates[1].Status)
	assert.Equal(t, 7.0, items.updates[2].Contagem)
	_, touched := items.updates[5]
	assert.False(t, touched)
}

func TestUpdateStatus_FailuresAreIsolated(t *testing.T) {
	var seed []Item
	for i := int64(1); i <= 20; i++ {
		seed = append(seed, Item{ID: i, Codigo: "M", SaldoSAP: 1, Data: "2024-05-01"})
	}
	items := &fakeItems{items: seed, failIDs: map[int64]error{
		3:  errors.New("deadlock detected"),
		17: errors.New("conn closed"),
	}}
	svc := newService(items, &fakeBalances{}, &fakeCounts{byDate: map[string][]counts.EnrichedRecord{
		"2024-05-01": {counted("M", 1)},
	}})

	rep, err := svc.UpdateStatus(context.Background(), "2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, 20, rep.Total)
	assert.Equal(t, 18, rep.Updated)
	assert.Equal(t, 2, rep.Failed)
	assert.Len(t, items.updates, 18)

	for _, r := range rep.Results {
		switch r.ID {
		case 3:
			assert.False(t, r.Updated)
			assert.Equal(t, "deadlock detected", r.Error)
		case 17:
			assert.False(t, r.Updated)
			assert.Equal(t, "conn closed", r.Error)
		default:
			assert.True(t, r.Updated, r.ID)
			assert.Empty(t, r.Error)
		}
		assert.Equal(t, StatusOK, r.Status)
	}
}

func TestUpdateStatus_NoDate(t *testing.T) {
	svc := newService(&fakeItems{}, &fakeBalances{}, &fakeCounts{})
	_, err := svc.UpdateStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoDate)
}

func TestUpdateStatus_NothingAssigned(t *testing.T) {
	svc := newService(&fakeItems{}, &fakeBalances{}, &fakeCounts{})
	rep, err := svc.UpdateStatus(context.Background(), "2024-05-01")
	require.NoError(t, err)
	assert.Zero(t, rep.Total)
	assert.NotNil(t, rep.Results)
}

func TestCountDates(t *testing.T) {
	svc := newService(&fakeItems{}, &fakeBalances{}, &fakeCounts{byDate: map[string][]counts.EnrichedRecord{
		"2024-04-01": nil,
		"2024-05-01": nil,
	}})
	dates, err := svc.CountDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01", "2024-04-01"}, dates)
}

package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "restoledger/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier simulates sys_sequences for a single key.
type mockQuerier struct {
	mu    sync.Mutex
	value int64
	calls int
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	increment := int64(1)
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			increment = v
		}
	}
	m.value += increment
	return &mockRow{val: m.value}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := corenumerator.DefaultConfig("SUP")

	num, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "SUP-2026-00001", num)

	num, err = svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "SUP-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := corenumerator.DefaultConfig("DED")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "DED-2026-00001", num)
	assert.Equal(t, int64(10), q.value)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(context.Background(), cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range served from memory")

	num, err = svc.GetNextNumber(context.Background(), cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "DED-2026-00011", num)
	assert.Equal(t, int64(20), q.value)
}

func TestGetNextNumber_QuerierError(t *testing.T) {
	svc := NewWithQuerierFunc(func(context.Context) Querier { return errQuerier{} })

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("WO"), nil, period)
	assert.ErrorContains(t, err, "strict next")
}

type errQuerier struct{}

func (errQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return &mockRow{err: assert.AnError}
}

func TestBuildKeyAndFormat(t *testing.T) {
	tests := []struct {
		name string
		cfg  corenumerator.Config
		key  string
		want string
	}{
		{"yearly", corenumerator.DefaultConfig("INV"), "INV_2026", "INV-2026-00007"},
		{"monthly", corenumerator.Config{Prefix: "TR", ResetPeriod: "month", PadWidth: 3}, "TR_2026_03", "TR-007"},
		{"never", corenumerator.Config{Prefix: "RET", IncludeYear: true}, "RET", "RET-2026-00007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, BuildKey(tt.cfg, period))
			assert.Equal(t, tt.want, Format(tt.cfg, period, 7))
		})
	}
}

package progress

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "progress-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewSQLiteStore(filepath.Join(tmpDir, "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testRecord(name string, date time.Time) *domain.ProgressRecord {
	return &domain.ProgressRecord{
		Date:        date,
		Name:        name,
		Weight:      72.5,
		BMI:         27.1,
		CycleLength: 6,
		HOMAIR:      3.86,
		TSH:         2.1,
	}
}

func TestSQLiteStore_AppendAndHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 7)

	require.NoError(t, store.Append(ctx, testRecord("Priya Sharma", day1)))
	require.NoError(t, store.Append(ctx, testRecord("Priya Sharma", day2)))

	history, err := store.History(ctx, "Priya Sharma")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, day1, history[0].Date)
	assert.Equal(t, day2, history[1].Date)
	assert.Equal(t, 72.5, history[0].Weight)
	assert.Equal(t, 3.86, history[0].HOMAIR)
}

func TestSQLiteStore_ReplaceOnWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := testRecord("Priya Sharma", day)
	require.NoError(t, store.Append(ctx, first))

	// Same (name, date) key with updated values replaces the earlier row.
	second := testRecord("Priya Sharma", day)
	second.Weight = 71.0
	second.HOMAIR = 2.9
	require.NoError(t, store.Append(ctx, second))

	history, err := store.History(ctx, "Priya Sharma")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 71.0, history[0].Weight)
	assert.Equal(t, 2.9, history[0].HOMAIR)
}

func TestSQLiteStore_RejectsEmptyName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	record := testRecord("", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	err := store.Append(ctx, record)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyPatientName)

	// Nothing was persisted.
	names, err := store.Patients(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSQLiteStore_Patients(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, testRecord("Meera Nair", day)))
	require.NoError(t, store.Append(ctx, testRecord("Anita Rao", day)))
	require.NoError(t, store.Append(ctx, testRecord("Meera Nair", day.AddDate(0, 0, 1))))

	names, err := store.Patients(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anita Rao", "Meera Nair"}, names)
}

func TestSQLiteStore_HistoryEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	history, err := store.History(ctx, "Unknown Patient")
	require.NoError(t, err)
	assert.Empty(t, history)
}

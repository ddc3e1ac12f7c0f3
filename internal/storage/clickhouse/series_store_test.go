package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

var testNow = time.Date(2024, 3, 10, 14, 37, 0, 0, time.UTC)

func testCalculator() *timebucket.Calculator {
	return timebucket.NewCalculator(timebucket.WithClock(func() time.Time { return testNow }))
}

type sliceRows struct {
	data [][2]any
	idx  int
	err  error
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...interface{}) error {
	row := r.data[r.idx-1]
	*dest[0].(*int64) = row[0].(int64)
	*dest[1].(*float64) = row[1].(float64)
	return nil
}

func (r *sliceRows) Err() error { return r.err }

func TestEntriesQuery(t *testing.T) {
	q := entriesQuery(domain.SeriesTVLs)

	assert.Contains(t, q, "FROM tvls")
	assert.Contains(t, q, "WHERE vault_id = $1")
	assert.Contains(t, q, "max(val)")
	assert.Contains(t, q, "intDiv(toInt64(toUnixTimestamp(t)) - $2, $4) * $4")
	assert.Contains(t, q, "ORDER BY bucket_start ASC")
}

func TestScanDataPoints(t *testing.T) {
	points, err := scanDataPoints(&sliceRows{data: [][2]any{
		{int64(100), 1.0},
		{int64(200), 3.0},
	}})
	require.NoError(t, err)
	assert.Equal(t, []domain.DataPoint{{T: 100, V: 1}, {T: 200, V: 3}}, points)

	points, err = scanDataPoints(&sliceRows{})
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	cause := errors.New("broken pipe")
	_, err = scanDataPoints(&sliceRows{err: cause})
	assert.ErrorIs(t, err, cause)
}

func TestSeriesStore_InvalidInputNeverQueries(t *testing.T) {
	// A nil connection panics if touched.
	store := NewSeriesStore(nil, testCalculator(), zerolog.Nop())

	_, err := store.GetEntries(context.Background(), domain.Series{}, 1, timebucket.Bucket1h1d)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetEntries(context.Background(), domain.SeriesPrices, 1, "bogus")
	assert.ErrorIs(t, err, timebucket.ErrUnknownBucket)
}

func TestSeriesStore_Integration_DailyMaxima(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }

	seedSamples(t, conn, "prices", 42, map[time.Time]float64{
		day(5, 1):  10,
		day(5, 9):  14,
		day(6, 0):  20,
		day(6, 12): 19,
		day(7, 7):  8,
	})
	seedSamples(t, conn, "prices", 43, map[time.Time]float64{
		day(5, 2): 999,
	})

	store := NewSeriesStore(conn, testCalculator(), zerolog.Nop())
	points, err := store.GetEntries(context.Background(), domain.SeriesPrices, 42, timebucket.Bucket1d1M)
	require.NoError(t, err)

	assert.Equal(t, []domain.DataPoint{
		{T: day(5, 0).Unix(), V: 14},
		{T: day(6, 0).Unix(), V: 20},
		{T: day(7, 0).Unix(), V: 8},
	}, points)
}

func TestSeriesStore_Integration_Empty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSeriesStore(conn, testCalculator(), zerolog.Nop())
	points, err := store.GetEntries(context.Background(), domain.SeriesAPYs, 1, timebucket.Bucket1h1w)
	require.NoError(t, err)
	assert.Empty(t, points)
}

package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/observability"
	"vault-data-api/internal/querytrace"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

// SeriesStore implements storage.SeriesReader using ClickHouse.
type SeriesStore struct {
	conn    *Conn
	aligner storage.BucketAligner
	logger  zerolog.Logger
}

// NewSeriesStore creates a new SeriesStore.
func NewSeriesStore(conn *Conn, aligner storage.BucketAligner, logger zerolog.Logger) *SeriesStore {
	return &SeriesStore{conn: conn, aligner: aligner, logger: logger}
}

// Compile-time interface check.
var _ storage.SeriesReader = (*SeriesStore)(nil)

// entriesQuery builds the bucketed max query for series.
// Parameters: $1 entity id, $2 window start, $3 window end, $4 bin width (all seconds).
// Buckets are computed arithmetically so they are anchored at $2.
// The alias is not "t": ClickHouse resolves aliases in WHERE too.
func entriesQuery(series domain.Series) string {
	return fmt.Sprintf(`
		SELECT toInt64($2 + intDiv(toInt64(toUnixTimestamp(t)) - $2, $4) * $4) AS bucket_start,
		       max(val)                                                        AS v
		FROM %s
		WHERE %s = $1
		  AND t BETWEEN toDateTime($2, 'UTC') AND toDateTime($3, 'UTC')
		GROUP BY bucket_start
		ORDER BY bucket_start ASC
	`, series.Table(), series.Column())
}

// GetEntries returns the per-bucket maximum for entity id, ordered by bucket start ASC.
func (s *SeriesStore) GetEntries(ctx context.Context, series domain.Series, id int64, bucket timebucket.TimeBucket) ([]domain.DataPoint, error) {
	if !series.Valid() {
		return nil, fmt.Errorf("%w: series %s", storage.ErrInvalidInput, series)
	}

	params, err := s.aligner.SnapshotAligned(bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidInput, err)
	}

	query := entriesQuery(series)
	args := []any{id, params.Start.Unix(), params.End.Unix(), params.BinSeconds()}

	if e := s.logger.Trace(); e.Enabled() {
		e.Str("series", series.String()).Msg(querytrace.Format(query, args...))
	}

	start := time.Now()
	points, err := s.query(ctx, query, args...)
	observability.RecordDBQuery(databaseLabel, "get_entries", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get %s entries: %w", series.Table(), err)
	}

	observability.RecordRowsReturned(databaseLabel, string(series.Table()), len(points))
	return points, nil
}

func (s *SeriesStore) query(ctx context.Context, query string, args ...any) ([]domain.DataPoint, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDataPoints(rows)
}

// scanDataPoints scans (bucket_start, v) rows.
func scanDataPoints(rows chRows) ([]domain.DataPoint, error) {
	points := make([]domain.DataPoint, 0)

	for rows.Next() {
		var p domain.DataPoint
		if err := rows.Scan(&p.T, &p.V); err != nil {
			return nil, fmt.Errorf("scan data point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data points: %w", err)
	}

	return points, nil
}

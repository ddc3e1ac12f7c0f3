package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/observability"
	"vault-data-api/internal/querytrace"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

// SeriesStore implements storage.SeriesReader using PostgreSQL.
type SeriesStore struct {
	db      Querier
	aligner storage.BucketAligner
	logger  zerolog.Logger
}

// NewSeriesStore creates a new SeriesStore.
func NewSeriesStore(db Querier, aligner storage.BucketAligner, logger zerolog.Logger) *SeriesStore {
	return &SeriesStore{db: db, aligner: aligner, logger: logger}
}

// Compile-time interface check.
var _ storage.SeriesReader = (*SeriesStore)(nil)

// entriesQuery builds the bucketed max query for series.
// Parameters: $1 entity id, $2 window start, $3 window end, $4 bin width.
// Table and column come from the closed domain.Series set, never from callers.
func entriesQuery(series domain.Series) string {
	return fmt.Sprintf(`
		SELECT EXTRACT(EPOCH FROM date_bin($4, t, $2))::bigint AS t,
		       max(val)::double precision                     AS v
		FROM %s
		WHERE %s = $1
		  AND t BETWEEN $2 AND $3
		GROUP BY date_bin($4, t, $2)
		ORDER BY t ASC
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
	args := []any{id, params.Start, params.End, params.Bin}

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
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDataPoints(rows)
}

// scanDataPoints scans (t, v) rows. Never returns a nil slice on success.
func scanDataPoints(rows pgx.Rows) ([]domain.DataPoint, error) {
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

package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/observability"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

// SeriesStore is an in-memory implementation of storage.SeriesReader.
// It applies the same bucketing as the SQL backends: buckets anchored at the
// window start, maximum per bucket, empty buckets omitted.
type SeriesStore struct {
	samples map[domain.Table][]domain.Sample
	aligner storage.BucketAligner
}

// NewSeriesStore creates a series store from fixtures.
func NewSeriesStore(f *Fixtures, aligner storage.BucketAligner) *SeriesStore {
	s := &SeriesStore{
		samples: make(map[domain.Table][]domain.Sample),
		aligner: aligner,
	}
	if f != nil {
		for table, rows := range f.Samples {
			s.samples[table] = slices.Clone(rows)
		}
	}
	return s
}

// Compile-time interface check.
var _ storage.SeriesReader = (*SeriesStore)(nil)

// GetEntries returns the per-bucket maximum for entity id, ordered by bucket start ASC.
func (s *SeriesStore) GetEntries(_ context.Context, series domain.Series, id int64, bucket timebucket.TimeBucket) ([]domain.DataPoint, error) {
	if !series.Valid() {
		return nil, fmt.Errorf("%w: series %s", storage.ErrInvalidInput, series)
	}

	params, err := s.aligner.SnapshotAligned(bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidInput, err)
	}

	start := time.Now()
	points := aggregateMax(s.samples[series.Table()], id, params)
	observability.RecordDBQuery("memory", "get_entries", time.Since(start).Seconds(), nil)

	return points, nil
}

// aggregateMax buckets the samples of entity id that fall in the window.
func aggregateMax(samples []domain.Sample, id int64, params timebucket.Params) []domain.DataPoint {
	maxByBucket := make(map[int64]float64)
	for _, smp := range samples {
		if smp.EntityID != id || !params.Contains(smp.T) {
			continue
		}
		b := params.BucketStart(smp.T)
		if cur, ok := maxByBucket[b]; !ok || smp.Val > cur {
			maxByBucket[b] = smp.Val
		}
	}

	points := make([]domain.DataPoint, 0, len(maxByBucket))
	for t, v := range maxByBucket {
		points = append(points, domain.DataPoint{T: t, V: v})
	}
	slices.SortFunc(points, func(a, b domain.DataPoint) int {
		return cmp.Compare(a.T, b.T)
	})
	return points
}

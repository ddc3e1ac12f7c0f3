package storage

import (
	"context"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/timebucket"
)

// IdentityResolver maps external symbols to store-assigned IDs.
// An unknown symbol is reported through found == false, never as an error.
type IdentityResolver interface {
	// ResolveOracleID returns the internal ID of the price oracle with the given symbol.
	ResolveOracleID(ctx context.Context, symbol string) (id int64, found bool, err error)

	// ResolveOracleTokens returns the token IDs of a price oracle.
	// Returns an empty slice if the oracle is unknown or has no tokens.
	ResolveOracleTokens(ctx context.Context, symbol string) ([]int64, error)

	// ResolveVaultID returns the internal ID of the vault with the given symbol.
	ResolveVaultID(ctx context.Context, symbol string) (id int64, found bool, err error)
}

// SeriesReader retrieves bucketed metric series.
type SeriesReader interface {
	// GetEntries returns the maximum value per bucket for entity id within the
	// snapshot-aligned window of bucket, ordered by bucket start ASC.
	// Empty buckets are omitted.
	GetEntries(ctx context.Context, series domain.Series, id int64, bucket timebucket.TimeBucket) ([]domain.DataPoint, error)
}

// BucketAligner translates a granularity into an aligned window.
// *timebucket.Calculator implements it.
type BucketAligner interface {
	SnapshotAligned(bucket timebucket.TimeBucket) (timebucket.Params, error)
}

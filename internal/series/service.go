// Package series resolves entity symbols and fetches their bucketed metric series.
package series

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/storage"
	"vault-data-api/internal/timebucket"
)

// ErrUnknownEntity is returned when a symbol does not resolve to any entity.
var ErrUnknownEntity = errors.New("unknown entity")

// Service combines symbol resolution with series retrieval.
type Service struct {
	resolver storage.IdentityResolver
	reader   storage.SeriesReader
	logger   zerolog.Logger
}

// NewService creates a new Service.
func NewService(resolver storage.IdentityResolver, reader storage.SeriesReader, logger zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		reader:   reader,
		logger:   logger,
	}
}

// Entries resolves symbol with the resolver matching the series' identifying
// column and returns the bucketed series for it.
// Returns ErrUnknownEntity if the symbol does not resolve.
func (s *Service) Entries(ctx context.Context, series domain.Series, symbol string, bucket timebucket.TimeBucket) ([]domain.DataPoint, error) {
	id, err := s.resolve(ctx, series.Column(), symbol)
	if err != nil {
		return nil, err
	}

	points, err := s.reader.GetEntries(ctx, series, id, bucket)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("series", series.String()).
		Str("symbol", symbol).
		Int64("id", id).
		Str("bucket", string(bucket)).
		Int("points", len(points)).
		Msg("series fetched")

	return points, nil
}

// OracleTokens returns the token IDs of an oracle. Unknown oracles yield an empty slice.
func (s *Service) OracleTokens(ctx context.Context, symbol string) ([]int64, error) {
	return s.resolver.ResolveOracleTokens(ctx, symbol)
}

func (s *Service) resolve(ctx context.Context, column domain.IDColumn, symbol string) (int64, error) {
	var (
		id    int64
		found bool
		err   error
	)

	switch column {
	case domain.ColumnOracleID:
		id, found, err = s.resolver.ResolveOracleID(ctx, symbol)
	case domain.ColumnVaultID:
		id, found, err = s.resolver.ResolveVaultID(ctx, symbol)
	default:
		return 0, fmt.Errorf("%w: no resolver for column %q", storage.ErrInvalidInput, column)
	}

	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: %s %q", ErrUnknownEntity, column, symbol)
	}
	return id, nil
}

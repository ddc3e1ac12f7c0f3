package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vault-data-api/internal/observability"
	"vault-data-api/internal/querytrace"
	"vault-data-api/internal/storage"
)

const (
	queryOracleID     = `SELECT id FROM price_oracles WHERE oracle_id = $1 LIMIT 1`
	queryOracleTokens = `SELECT tokens FROM price_oracles WHERE oracle_id = $1 LIMIT 1`
	queryVaultID      = `SELECT id FROM vault_ids WHERE vault_id = $1 LIMIT 1`
)

// IdentityStore implements storage.IdentityResolver using ClickHouse.
type IdentityStore struct {
	conn   *Conn
	logger zerolog.Logger
}

// NewIdentityStore creates a new IdentityStore.
func NewIdentityStore(conn *Conn, logger zerolog.Logger) *IdentityStore {
	return &IdentityStore{conn: conn, logger: logger}
}

// Compile-time interface check.
var _ storage.IdentityResolver = (*IdentityStore)(nil)

// ResolveOracleID returns the internal ID of the price oracle with the given symbol.
func (s *IdentityStore) ResolveOracleID(ctx context.Context, symbol string) (int64, bool, error) {
	id, found, err := s.lookupID(ctx, "resolve_oracle_id", queryOracleID, symbol)
	if err != nil {
		return 0, false, fmt.Errorf("resolve oracle id: %w", err)
	}
	observability.RecordLookup("oracle", found)
	return id, found, nil
}

// ResolveVaultID returns the internal ID of the vault with the given symbol.
func (s *IdentityStore) ResolveVaultID(ctx context.Context, symbol string) (int64, bool, error) {
	id, found, err := s.lookupID(ctx, "resolve_vault_id", queryVaultID, symbol)
	if err != nil {
		return 0, false, fmt.Errorf("resolve vault id: %w", err)
	}
	observability.RecordLookup("vault", found)
	return id, found, nil
}

// ResolveOracleTokens returns the token IDs of a price oracle, or an empty slice.
func (s *IdentityStore) ResolveOracleTokens(ctx context.Context, symbol string) ([]int64, error) {
	s.trace(queryOracleTokens, symbol)

	start := time.Now()
	var tokens []int64
	err := s.conn.QueryRow(ctx, queryOracleTokens, symbol).Scan(&tokens)
	if isNotFoundError(err) {
		err = nil
	}
	observability.RecordDBQuery(databaseLabel, "resolve_oracle_tokens", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("resolve oracle tokens: %w", err)
	}

	if tokens == nil {
		tokens = []int64{}
	}
	return tokens, nil
}

func (s *IdentityStore) lookupID(ctx context.Context, operation, query, symbol string) (int64, bool, error) {
	s.trace(query, symbol)

	start := time.Now()
	var id int64
	err := s.conn.QueryRow(ctx, query, symbol).Scan(&id)
	found := err == nil
	if isNotFoundError(err) {
		err = nil
	}
	observability.RecordDBQuery(databaseLabel, operation, time.Since(start).Seconds(), err)
	if err != nil {
		return 0, false, err
	}
	return id, found, nil
}

func (s *IdentityStore) trace(query string, params ...any) {
	if e := s.logger.Trace(); e.Enabled() {
		e.Msg(querytrace.Format(query, params...))
	}
}

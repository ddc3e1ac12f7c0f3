package memory

import (
	"context"
	"slices"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/storage"
)

// IdentityStore is an in-memory implementation of storage.IdentityResolver.
// Contents are fixed at construction.
type IdentityStore struct {
	oracles map[string]domain.OracleRecord
	vaults  map[string]domain.VaultRecord
}

// NewIdentityStore creates an identity store from fixtures.
// The first record wins if a symbol repeats.
func NewIdentityStore(f *Fixtures) *IdentityStore {
	s := &IdentityStore{
		oracles: make(map[string]domain.OracleRecord),
		vaults:  make(map[string]domain.VaultRecord),
	}
	if f == nil {
		return s
	}

	for _, o := range f.Oracles {
		if _, exists := s.oracles[o.OracleID]; !exists {
			o.Tokens = slices.Clone(o.Tokens)
			s.oracles[o.OracleID] = o
		}
	}
	for _, v := range f.Vaults {
		if _, exists := s.vaults[v.VaultID]; !exists {
			s.vaults[v.VaultID] = v
		}
	}
	return s
}

// Compile-time interface check.
var _ storage.IdentityResolver = (*IdentityStore)(nil)

// ResolveOracleID returns the internal ID of the price oracle with the given symbol.
func (s *IdentityStore) ResolveOracleID(_ context.Context, symbol string) (int64, bool, error) {
	o, ok := s.oracles[symbol]
	return o.ID, ok, nil
}

// ResolveOracleTokens returns a copy of the oracle's token IDs, or an empty slice.
func (s *IdentityStore) ResolveOracleTokens(_ context.Context, symbol string) ([]int64, error) {
	o, ok := s.oracles[symbol]
	if !ok || len(o.Tokens) == 0 {
		return []int64{}, nil
	}
	return slices.Clone(o.Tokens), nil
}

// ResolveVaultID returns the internal ID of the vault with the given symbol.
func (s *IdentityStore) ResolveVaultID(_ context.Context, symbol string) (int64, bool, error) {
	v, ok := s.vaults[symbol]
	return v.ID, ok, nil
}

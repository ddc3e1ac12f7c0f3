package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vault-data-api/internal/domain"
	"vault-data-api/internal/storage"
)

// Fixtures is a snapshot of store contents served by the in-memory backend.
type Fixtures struct {
	Oracles []domain.OracleRecord            `yaml:"oracles"`
	Vaults  []domain.VaultRecord             `yaml:"vaults"`
	Samples map[domain.Table][]domain.Sample `yaml:"samples"`
}

// LoadFixturesFile reads fixtures from a YAML file.
func LoadFixturesFile(path string) (*Fixtures, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate rejects duplicate symbols and unknown tables.
func (f *Fixtures) Validate() error {
	oracles := make(map[string]struct{}, len(f.Oracles))
	for _, o := range f.Oracles {
		if o.OracleID == "" {
			return fmt.Errorf("%w: oracle %d has empty symbol", storage.ErrInvalidInput, o.ID)
		}
		if _, dup := oracles[o.OracleID]; dup {
			return fmt.Errorf("%w: duplicate oracle symbol %q", storage.ErrInvalidInput, o.OracleID)
		}
		oracles[o.OracleID] = struct{}{}
	}

	vaults := make(map[string]struct{}, len(f.Vaults))
	for _, v := range f.Vaults {
		if v.VaultID == "" {
			return fmt.Errorf("%w: vault %d has empty symbol", storage.ErrInvalidInput, v.ID)
		}
		if _, dup := vaults[v.VaultID]; dup {
			return fmt.Errorf("%w: duplicate vault symbol %q", storage.ErrInvalidInput, v.VaultID)
		}
		vaults[v.VaultID] = struct{}{}
	}

	for table := range f.Samples {
		if _, err := domain.ParseTable(string(table)); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidInput, err)
		}
	}

	return nil
}

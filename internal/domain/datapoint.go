package domain

// DataPoint is one aggregated bucket of a metric series.
type DataPoint struct {
	T int64   `json:"t" yaml:"t"` // bucket start, Unix seconds
	V float64 `json:"v" yaml:"v"` // maximum raw value within the bucket
}

// OracleRecord is a row of price_oracles.
type OracleRecord struct {
	ID       int64   `yaml:"id"`
	OracleID string  `yaml:"oracle_id"` // external symbol
	Tokens   []int64 `yaml:"tokens"`
}

// VaultRecord is a row of vault_ids.
type VaultRecord struct {
	ID      int64  `yaml:"id"`
	VaultID string `yaml:"vault_id"` // external symbol
}

// Sample is one raw row of a metric table.
type Sample struct {
	EntityID int64   `yaml:"entity_id"` // oracle_id or vault_id, depending on the table
	T        int64   `yaml:"t"`         // Unix seconds
	Val      float64 `yaml:"val"`
}

package domain

import (
	"errors"
	"fmt"
)

// Errors returned when parsing series selectors.
var (
	ErrInvalidTable  = errors.New("invalid table")
	ErrInvalidSeries = errors.New("invalid table/column pairing")
)

// Table identifies a physical metric table.
type Table string

// Supported metric tables.
const (
	TablePrices       Table = "prices"
	TableAPYs         Table = "apys"
	TableTVLs         Table = "tvls"
	TableLPBreakdowns Table = "lp_breakdowns"
)

// IDColumn identifies the foreign key column scoping a metric table to one entity.
type IDColumn string

// Supported identifying columns.
const (
	ColumnOracleID IDColumn = "oracle_id"
	ColumnVaultID  IDColumn = "vault_id"
)

// ParseTable converts a raw table name into a Table.
func ParseTable(s string) (Table, error) {
	switch t := Table(s); t {
	case TablePrices, TableAPYs, TableTVLs, TableLPBreakdowns:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTable, s)
}

// Series is a (table, column) pair the schema supports.
// Fields are unexported so only the values below can exist.
type Series struct {
	table  Table
	column IDColumn
}

// The four series the store exposes.
var (
	SeriesPrices       = Series{table: TablePrices, column: ColumnOracleID}
	SeriesLPBreakdowns = Series{table: TableLPBreakdowns, column: ColumnOracleID}
	SeriesAPYs         = Series{table: TableAPYs, column: ColumnVaultID}
	SeriesTVLs         = Series{table: TableTVLs, column: ColumnVaultID}
)

var allSeries = []Series{SeriesPrices, SeriesLPBreakdowns, SeriesAPYs, SeriesTVLs}

// NewSeries returns the series for a table/column pair.
// Returns ErrInvalidSeries if the pair is not backed by the schema.
func NewSeries(table Table, column IDColumn) (Series, error) {
	for _, s := range allSeries {
		if s.table == table && s.column == column {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("%w: %s.%s", ErrInvalidSeries, table, column)
}

// SeriesForTable returns the series stored in table.
func SeriesForTable(table Table) (Series, error) {
	for _, s := range allSeries {
		if s.table == table {
			return s, nil
		}
	}
	return Series{}, fmt.Errorf("%w: %q", ErrInvalidTable, table)
}

// Table returns the physical table name.
func (s Series) Table() Table { return s.table }

// Column returns the identifying column name.
func (s Series) Column() IDColumn { return s.column }

// Valid reports whether s is one of the supported series.
// The zero Series is not valid.
func (s Series) Valid() bool {
	return s.table != "" && s.column != ""
}

// String returns "table.column".
func (s Series) String() string {
	if !s.Valid() {
		return "<invalid>"
	}
	return string(s.table) + "." + string(s.column)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier records the last statement and replays canned results.
type fakeQuerier struct {
	rows     [][]any
	row      []any
	queryErr error
	rowErr   error
	iterErr  error

	lastSQL  string
	lastArgs []any
	calls    int
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{data: f.rows, err: f.iterErr}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	if f.rowErr != nil {
		return fakeRow{err: f.rowErr}
	}
	return fakeRow{values: f.row}
}

func (f *fakeQuerier) record(sql string, args []any) {
	f.calls++
	f.lastSQL = sql
	f.lastArgs = args
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.data[r.idx-1], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.idx-1], nil
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("fake: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = values[i].(int64)
		case *float64:
			*p = values[i].(float64)
		case *[]int64:
			if values[i] == nil {
				*p = nil
			} else {
				*p = values[i].([]int64)
			}
		default:
			return fmt.Errorf("fake: unsupported destination %T", d)
		}
	}
	return nil
}

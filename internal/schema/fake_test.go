package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// fakeRows is an in-memory Rows implementation.
type fakeRows struct {
	cols   []string
	data   [][]any
	idx    int
	closed bool
}

func newRows(cols []string, data ...[]any) *fakeRows {
	return &fakeRows{cols: cols, data: data, idx: -1}
}

func boolRow(v any) *fakeRows {
	return newRows([]string{"ok"}, []any{v})
}

func (r *fakeRows) Next() bool {
	if r.idx+1 >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan called without a row")
	}
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destination arguments, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *any:
			*p = row[i]
		case *int64:
			v, ok := row[i].(int64)
			if !ok {
				return fmt.Errorf("column %d is %T, not int64", i, row[i])
			}
			*p = v
		case *string:
			v, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("column %d is %T, not string", i, row[i])
			}
			*p = v
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.cols, nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

// fakeDB records every call in order and answers queries from handlers.
type fakeDB struct {
	calls    []string
	queries  map[string]func(f *fakeDB) (Rows, error)
	execErrs map[string]error
	executed map[string]bool
	opened   []*fakeRows
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		queries:  make(map[string]func(f *fakeDB) (Rows, error)),
		execErrs: make(map[string]error),
		executed: make(map[string]bool),
	}
}

// onQuery registers a handler for query.
func (f *fakeDB) onQuery(query string, h func(f *fakeDB) (Rows, error)) {
	f.queries[query] = h
}

// metWhen makes query report true once stmt has been executed.
func (f *fakeDB) metWhen(query, stmt string) {
	f.onQuery(query, func(f *fakeDB) (Rows, error) {
		return boolRow(f.executed[stmt]), nil
	})
}

func (f *fakeDB) Query(_ context.Context, query string) (Rows, error) {
	f.calls = append(f.calls, "query: "+query)
	h, ok := f.queries[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	rows, err := h(f)
	if fr, ok := rows.(*fakeRows); ok {
		f.opened = append(f.opened, fr)
	}
	return rows, err
}

func (f *fakeDB) Exec(_ context.Context, stmt string) error {
	f.calls = append(f.calls, "exec: "+stmt)
	if err, ok := f.execErrs[stmt]; ok {
		return err
	}
	f.executed[stmt] = true
	return nil
}

func (f *fakeDB) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

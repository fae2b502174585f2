package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// Rows is a cursor over check query results.
// *sql.Rows and *sqlx.Rows both satisfy it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// DB is the database handle a node converges against.
type DB interface {
	// Query runs a check query. The caller closes the returned rows.
	Query(ctx context.Context, query string) (Rows, error)

	// Exec runs a corrective statement and discards any result.
	Exec(ctx context.Context, statement string) error
}

// CheckFunc maps check query rows to the corrective statements still needed.
// An empty result means the object is satisfied.
//
// A CheckFunc must be deterministic for the same rows and free of side
// effects. It runs twice when the node is changed: once to decide and once to
// verify.
type CheckFunc func(rows Rows) ([]string, error)

// Node describes how to check and how to fix one schema object.
type Node struct {
	// Name identifies the object in logs and errors. It is not a key and may
	// repeat across a tree.
	Name string

	checkQuery string
	check      CheckFunc
	requires   []*Node
}

// New creates a leaf node with no prerequisites.
func New(name, checkQuery string, check CheckFunc) *Node {
	return &Node{
		Name:       name,
		checkQuery: checkQuery,
		check:      check,
	}
}

// WithBoolCheck creates a node whose check query yields exactly one row with
// one boolean-like value. True means the object is satisfied; false means
// meet must run, in order.
//
// Integers are true when non-zero. Strings and byte slices are parsed with
// strconv.ParseBool. Zero rows, more than one row, or any other value fail
// the check.
func WithBoolCheck(name, checkQuery string, meet ...string) *Node {
	statements := append([]string(nil), meet...)
	return New(name, checkQuery, func(rows Rows) ([]string, error) {
		met, err := scanBool(rows)
		if err != nil {
			return nil, err
		}
		if met {
			return nil, nil
		}
		return append([]string(nil), statements...), nil
	})
}

// Require adds a prerequisite that is converged before this node's
// corrective statements run. Prerequisites are only visited when this node
// is unsatisfied, and in the order they were added.
func (n *Node) Require(prereq *Node) *Node {
	n.requires = append(n.requires, prereq)
	return n
}

// CheckQuery returns the query used to check the object.
func (n *Node) CheckQuery() string {
	return n.checkQuery
}

// Requires returns the prerequisites in declared order.
func (n *Node) Requires() []*Node {
	return n.requires
}

// LogValue implements slog.LogValuer.
func (n *Node) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", n.Name),
		slog.Int("requires", len(n.requires)),
	)
}

// scanBool reads a single boolean-like value from rows.
func scanBool(rows Rows) (bool, error) {
	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}
	if len(cols) != 1 {
		return false, fmt.Errorf("expected 1 column, got %d", len(cols))
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, err
		}
		return false, errors.New("expected exactly one row, got none")
	}

	var value any
	if err := rows.Scan(&value); err != nil {
		return false, err
	}

	if rows.Next() {
		return false, errors.New("expected exactly one row, got more")
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	return asBool(value)
}

func asBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int8:
		return v != 0, nil
	case int16:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case uint:
		return v != 0, nil
	case uint8:
		return v != 0, nil
	case uint16:
		return v != 0, nil
	case uint32:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float32:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	case nil:
		return false, errors.New("expected boolean value, got NULL")
	default:
		return false, fmt.Errorf("expected boolean value, got %T", value)
	}
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected boolean value, got %q", s)
	}
	return b, nil
}

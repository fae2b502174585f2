package manifest

import (
	"strings"

	"github.com/roach88/ensure-schema/internal/schema"
	"github.com/roach88/ensure-schema/internal/store"
)

// Check kinds.
const (
	// KindBool expects one row with one boolean-like value (default).
	KindBool = "bool"
	// KindExists is satisfied when the check query returns at least one row.
	KindExists = "exists"
	// KindAbsent is satisfied when the check query returns no rows.
	KindAbsent = "absent"
)

// Document is a parsed manifest.
type Document struct {
	Objects []Object `yaml:"objects" toml:"objects" json:"objects"`
}

// Object describes one schema node.
//
// Exactly one of Check or a catalog shorthand (Table, Index, View, Trigger,
// Column) must be set. Column is written "table.column".
type Object struct {
	Name     string   `yaml:"name" toml:"name" json:"name"`
	Check    string   `yaml:"check,omitempty" toml:"check,omitempty" json:"check,omitempty"`
	Kind     string   `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
	Table    string   `yaml:"table,omitempty" toml:"table,omitempty" json:"table,omitempty"`
	Index    string   `yaml:"index,omitempty" toml:"index,omitempty" json:"index,omitempty"`
	View     string   `yaml:"view,omitempty" toml:"view,omitempty" json:"view,omitempty"`
	Trigger  string   `yaml:"trigger,omitempty" toml:"trigger,omitempty" json:"trigger,omitempty"`
	Column   string   `yaml:"column,omitempty" toml:"column,omitempty" json:"column,omitempty"`
	Meet     []string `yaml:"meet" toml:"meet" json:"meet"`
	Requires []Object `yaml:"requires,omitempty" toml:"requires,omitempty" json:"requires,omitempty"`
}

// Build returns a fresh node tree for every top-level object, in order.
// Call it again to converge the same manifest twice.
func (d *Document) Build() []*schema.Node {
	nodes := make([]*schema.Node, 0, len(d.Objects))
	for i := range d.Objects {
		nodes = append(nodes, d.Objects[i].Node())
	}
	return nodes
}

// Node builds the node tree for o. The object must be valid.
func (o *Object) Node() *schema.Node {
	query := o.CheckQuery()

	var n *schema.Node
	switch o.Kind {
	case KindExists:
		n = schema.New(o.Name, query, rowsCheck(true, o.Meet))
	case KindAbsent:
		n = schema.New(o.Name, query, rowsCheck(false, o.Meet))
	default:
		n = schema.WithBoolCheck(o.Name, query, o.Meet...)
	}

	for i := range o.Requires {
		n.Require(o.Requires[i].Node())
	}
	return n
}

// CheckQuery returns Check or the catalog query for the shorthand in use.
func (o *Object) CheckQuery() string {
	switch {
	case o.Check != "":
		return o.Check
	case o.Table != "":
		return store.TableExistsQuery(o.Table)
	case o.Index != "":
		return store.IndexExistsQuery(o.Index)
	case o.View != "":
		return store.ViewExistsQuery(o.View)
	case o.Trigger != "":
		return store.TriggerExistsQuery(o.Trigger)
	case o.Column != "":
		table, column, _ := strings.Cut(o.Column, ".")
		return store.ColumnExistsQuery(table, column)
	default:
		return ""
	}
}

// rowsCheck is satisfied when the query has rows (wantRows) or has none.
func rowsCheck(wantRows bool, meet []string) schema.CheckFunc {
	statements := append([]string(nil), meet...)
	return func(rows schema.Rows) ([]string, error) {
		hasRows := rows.Next()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if hasRows == wantRows {
			return nil, nil
		}
		return append([]string(nil), statements...), nil
	}
}

func (o *Object) shorthands() []string {
	var set []string
	for _, s := range []struct{ name, value string }{
		{"check", o.Check},
		{"table", o.Table},
		{"index", o.Index},
		{"view", o.View},
		{"trigger", o.Trigger},
		{"column", o.Column},
	} {
		if s.value != "" {
			set = append(set, s.name)
		}
	}
	return set
}

// Count returns the number of objects in the document, prerequisites
// included.
func (d *Document) Count() int {
	var count func(objs []Object) int
	count = func(objs []Object) int {
		n := len(objs)
		for i := range objs {
			n += count(objs[i].Requires)
		}
		return n
	}
	return count(d.Objects)
}

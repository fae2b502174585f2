package store

import (
	"fmt"
	"strings"
)

// Check queries against the SQLite catalog. Each yields one row with one
// boolean-like value, suitable for schema.WithBoolCheck.

// TableExistsQuery checks that a table exists.
func TableExistsQuery(table string) string {
	return masterQuery("table", table)
}

// IndexExistsQuery checks that an index exists.
func IndexExistsQuery(index string) string {
	return masterQuery("index", index)
}

// ViewExistsQuery checks that a view exists.
func ViewExistsQuery(view string) string {
	return masterQuery("view", view)
}

// TriggerExistsQuery checks that a trigger exists.
func TriggerExistsQuery(trigger string) string {
	return masterQuery("trigger", trigger)
}

// ColumnExistsQuery checks that table has column.
func ColumnExistsQuery(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) > 0 FROM pragma_table_info(%s) WHERE name = %s",
		quoteLiteral(table), quoteLiteral(column),
	)
}

func masterQuery(kind, name string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = %s AND name = %s",
		quoteLiteral(kind), quoteLiteral(name),
	)
}

// quoteLiteral renders s as an SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

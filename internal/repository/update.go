package repository

import (
	"fmt"
	"strings"
)

// updateBuilder assembles a parameterized UPDATE statement. Column names
// come from repository code only; every value is bound as a positional
// parameter.
type updateBuilder struct {
	table   string
	sets    []string
	conds   []string
	args    []any
	changes int
}

func newUpdate(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

// set adds "column = $n" for value.
func (b *updateBuilder) set(column string, value any) *updateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	b.changes++
	return b
}

// touch adds a clause without a parameter, e.g. "updated_at = NOW()".
// It does not count as a change.
func (b *updateBuilder) touch(clause string) *updateBuilder {
	b.sets = append(b.sets, clause)
	return b
}

// where adds "column = $n" to the WHERE clause.
func (b *updateBuilder) where(column string, value any) *updateBuilder {
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// empty reports whether no field was set.
func (b *updateBuilder) empty() bool {
	return b.changes == 0
}

// build renders the statement. returning may be empty.
func (b *updateBuilder) build(returning string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(b.sets, ", "))
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}
	return sb.String(), b.args
}

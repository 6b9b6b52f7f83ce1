package dataset

import (
	"errors"
	"fmt"
	"time"
)

// ColumnType is the inferred type tag of a column. It decides the imputation
// policy and how the report engine treats the column.
type ColumnType int

const (
	// TypeText holds string cells.
	TypeText ColumnType = iota
	// TypeInteger holds int64 cells.
	TypeInteger
	// TypeFloat holds float64 cells.
	TypeFloat
	// TypeTimestamp holds time.Time cells.
	TypeTimestamp
	// TypeBoolean holds bool cells.
	TypeBoolean
)

// String returns the lower-case name of the type tag.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Numeric reports whether the type is integer or float.
func (t ColumnType) Numeric() bool { return t == TypeInteger || t == TypeFloat }

// ErrColumnLength is returned when columns of a table differ in length.
var ErrColumnLength = errors.New("columns have different lengths")

// Column is a named sequence of cells of one type. A nil cell is missing;
// other cells hold string, int64, float64, time.Time or bool according to Type.
type Column struct {
	Name   string
	Type   ColumnType
	Values []any
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// Missing returns the number of nil cells.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

func (c *Column) slice(lo, hi int) *Column {
	vals := make([]any, hi-lo)
	copy(vals, c.Values[lo:hi])
	return &Column{Name: c.Name, Type: c.Type, Values: vals}
}

// Table is an ordered set of equally long columns. Tables are treated as
// immutable: every transformation returns a new Table.
type Table struct {
	cols []*Column
	rows int
}

// New builds a Table from columns, checking that they all have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
			continue
		}
		if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d: %w", c.Name, c.Len(), t.rows, ErrColumnLength)
		}
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Row returns a copy of row i across all columns.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Values[i]
	}
	return row
}

// Slice returns a copy of rows [lo, hi), clamped to the table bounds.
func (t *Table) Slice(lo, hi int) *Table {
	if lo < 0 {
		lo = 0
	}
	if hi > t.rows {
		hi = t.rows
	}
	if lo > hi {
		lo = hi
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.slice(lo, hi)
	}
	return &Table{cols: cols, rows: hi - lo}
}

// Missing returns the total number of missing cells.
func (t *Table) Missing() int {
	n := 0
	for _, c := range t.cols {
		n += c.Missing()
	}
	return n
}

// Concat appends the rows of b after the rows of a. Both tables must have the
// same column names and types in the same order.
func Concat(a, b *Table) (*Table, error) {
	if len(a.cols) != len(b.cols) {
		return nil, fmt.Errorf("concat: %d columns vs %d", len(a.cols), len(b.cols))
	}
	cols := make([]*Column, len(a.cols))
	for i, ca := range a.cols {
		cb := b.cols[i]
		if ca.Name != cb.Name || ca.Type != cb.Type {
			return nil, fmt.Errorf("concat: column %d is %s %s vs %s %s", i, ca.Name, ca.Type, cb.Name, cb.Type)
		}
		vals := make([]any, 0, ca.Len()+cb.Len())
		vals = append(vals, ca.Values...)
		vals = append(vals, cb.Values...)
		cols[i] = &Column{Name: ca.Name, Type: ca.Type, Values: vals}
	}
	return &Table{cols: cols, rows: a.rows + b.rows}, nil
}

// Equal reports whether two tables have the same columns, types and cells.
func Equal(a, b *Table) bool {
	if a.rows != b.rows || len(a.cols) != len(b.cols) {
		return false
	}
	for i, ca := range a.cols {
		cb := b.cols[i]
		if ca.Name != cb.Name || ca.Type != cb.Type {
			return false
		}
		for r := range ca.Values {
			if !cellEqual(ca.Values[r], cb.Values[r]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(x, y any) bool {
	if tx, ok := x.(time.Time); ok {
		ty, ok := y.(time.Time)
		return ok && tx.Equal(ty)
	}
	return x == y
}

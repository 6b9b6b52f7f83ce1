// Package report selects, computes and renders the dashboard's reports.
package report

import "fmt"

// Kind is one of the fixed report kinds offered in the menu.
type Kind int

// Report kinds. The zero value is not a valid kind.
const (
	// DatasetSummary compares whole-table statistics of both slices.
	DatasetSummary Kind = iota + 1
	// DatasetMissingValues lists missing cells per column.
	DatasetMissingValues
	// ColumnSummary describes one column.
	ColumnSummary
	// ColumnDrift tests one column for drift.
	ColumnDrift
	// ColumnDistribution plots one column's distribution per slice.
	ColumnDistribution
	// DataDriftTable tests every column for drift on imputed data.
	DataDriftTable
)

var kindNames = map[Kind]string{
	DatasetSummary:       "Dataset Summary Metric",
	DatasetMissingValues: "Dataset Missing Values Metric",
	ColumnSummary:        "Column Summary Metric",
	ColumnDrift:          "Column Drift Metric",
	ColumnDistribution:   "Column Distribution Metric",
	DataDriftTable:       "Data Drift Table",
}

// menuOrder is the order kinds are presented to the user.
var menuOrder = []Kind{
	DatasetSummary,
	DatasetMissingValues,
	DataDriftTable,
	ColumnSummary,
	ColumnDrift,
	ColumnDistribution,
}

// String returns the kind's display name, which is also its report file key.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// NeedsColumn reports whether the kind is scoped to a single column.
func (k Kind) NeedsColumn() bool {
	return k == ColumnSummary || k == ColumnDrift || k == ColumnDistribution
}

// Imputes reports whether missing values are filled before the data is split.
func (k Kind) Imputes() bool { return k == DataDriftTable }

// Kinds returns all kinds in menu order.
func Kinds() []Kind {
	out := make([]Kind, len(menuOrder))
	copy(out, menuOrder)
	return out
}

// ParseKind maps an exact display name to its kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, &UnknownKindError{Name: name}
}

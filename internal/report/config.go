package report

import "github.com/KaramelBytes/driftdash/internal/dataset"

// StatTestPSI names the Population Stability Index test.
const StatTestPSI = "psi"

// Config is the configuration of one report run. The concrete types below are
// the only implementations.
type Config interface {
	Kind() Kind
	config()
}

// DatasetSummaryConfig summarizes both slices as a whole.
type DatasetSummaryConfig struct{}

// DatasetMissingValuesConfig counts missing values per column.
type DatasetMissingValuesConfig struct{}

// ColumnSummaryConfig describes one column.
type ColumnSummaryConfig struct{ Column string }

// ColumnDriftConfig measures drift of one column.
type ColumnDriftConfig struct{ Column string }

// ColumnDistributionConfig compares the distribution of one column.
type ColumnDistributionConfig struct{ Column string }

// DataDriftTableConfig measures drift of every column.
type DataDriftTableConfig struct {
	// CategoricalTest is the test used for text and boolean columns.
	CategoricalTest string
}

func (DatasetSummaryConfig) Kind() Kind       { return DatasetSummary }
func (DatasetMissingValuesConfig) Kind() Kind { return DatasetMissingValues }
func (ColumnSummaryConfig) Kind() Kind        { return ColumnSummary }
func (ColumnDriftConfig) Kind() Kind          { return ColumnDrift }
func (ColumnDistributionConfig) Kind() Kind   { return ColumnDistribution }
func (DataDriftTableConfig) Kind() Kind       { return DataDriftTable }

func (DatasetSummaryConfig) config()       {}
func (DatasetMissingValuesConfig) config() {}
func (ColumnSummaryConfig) config()        {}
func (ColumnDriftConfig) config()          {}
func (ColumnDistributionConfig) config()   {}
func (DataDriftTableConfig) config()       {}

// ColumnOf returns the column a configuration is scoped to, if any.
func ColumnOf(cfg Config) (string, bool) {
	switch c := cfg.(type) {
	case ColumnSummaryConfig:
		return c.Column, true
	case ColumnDriftConfig:
		return c.Column, true
	case ColumnDistributionConfig:
		return c.Column, true
	}
	return "", false
}

// Select builds the configuration for kind. Column-scoped kinds require column
// to name a column of t; other kinds ignore column.
func Select(kind Kind, column string, t *dataset.Table) (Config, error) {
	if kind.NeedsColumn() && (column == "" || !t.HasColumn(column)) {
		return nil, &InvalidColumnError{Kind: kind, Column: column}
	}
	switch kind {
	case DatasetSummary:
		return DatasetSummaryConfig{}, nil
	case DatasetMissingValues:
		return DatasetMissingValuesConfig{}, nil
	case ColumnSummary:
		return ColumnSummaryConfig{Column: column}, nil
	case ColumnDrift:
		return ColumnDriftConfig{Column: column}, nil
	case ColumnDistribution:
		return ColumnDistributionConfig{Column: column}, nil
	case DataDriftTable:
		return DataDriftTableConfig{CategoricalTest: StatTestPSI}, nil
	}
	return nil, &UnknownKindError{Name: kind.String()}
}

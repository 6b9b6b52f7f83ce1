package dataset

import "time"

// Sentinels written in place of missing cells by Impute.
const (
	MissingText   = "missing"
	MissingNumber = -9999.01
)

// MissingTimestamp is the sentinel for missing timestamps (1900-01-01T00:00:00.000 UTC).
var MissingTimestamp = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Impute returns a copy of t with missing cells filled by column type: text
// gets MissingText, integer and float get MissingNumber, timestamp gets
// MissingTimestamp. Boolean columns are copied unchanged, missing cells included.
// An integer column that has missing cells is returned as float so that the
// fractional sentinel fits.
func Impute(t *Table) *Table {
	cols := make([]*Column, t.NumCols())
	for i, c := range t.cols {
		cols[i] = imputeColumn(c)
	}
	return &Table{cols: cols, rows: t.rows}
}

func imputeColumn(c *Column) *Column {
	out := &Column{Name: c.Name, Type: c.Type, Values: make([]any, len(c.Values))}
	copy(out.Values, c.Values)

	var fill any
	switch c.Type {
	case TypeText:
		fill = MissingText
	case TypeFloat:
		fill = MissingNumber
	case TypeInteger:
		if c.Missing() == 0 {
			return out
		}
		out.Type = TypeFloat
		for i, v := range out.Values {
			if n, ok := v.(int64); ok {
				out.Values[i] = float64(n)
			}
		}
		fill = MissingNumber
	case TypeTimestamp:
		fill = MissingTimestamp
	default:
		return out
	}
	for i, v := range out.Values {
		if v == nil {
			out.Values[i] = fill
		}
	}
	return out
}

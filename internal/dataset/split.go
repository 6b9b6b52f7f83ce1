package dataset

// DefaultSplitIndex is the number of leading rows used as reference data.
const DefaultSplitIndex = 2000

// Split returns rows [0, k) as reference and the remaining rows as current, in
// their original order. When t has fewer than k rows, current is an empty table
// with the same columns. A negative k is treated as zero.
func Split(t *Table, k int) (reference, current *Table) {
	if k < 0 {
		k = 0
	}
	if k > t.rows {
		k = t.rows
	}
	return t.Slice(0, k), t.Slice(k, t.rows)
}

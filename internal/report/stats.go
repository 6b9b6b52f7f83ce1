package report

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

// psiFloor replaces empty bucket shares so the logarithm stays finite.
const psiFloor = 1e-4

type numberStats struct {
	Count               int
	Min, Max, Mean, Std float64
	Q25, Median, Q75    float64
}

// describe computes mean/std with Welford's update and quantiles on a sorted copy.
func describe(vals []float64) numberStats {
	s := numberStats{Count: len(vals), Min: math.Inf(1), Max: math.Inf(-1)}
	if len(vals) == 0 {
		return numberStats{}
	}
	var mean, m2 float64
	for i, x := range vals {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if len(vals) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

type categoryCount struct {
	Value string
	Count int
}

// topCategories sorts by count, then value, and keeps at most n entries.
func topCategories(counts map[string]int, n int) []categoryCount {
	tops := make([]categoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, categoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if n > 0 && len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// columnNumbers returns the finite cells of a numeric or timestamp column as
// floats; timestamps become Unix seconds. NaN and infinities are skipped.
func columnNumbers(c *dataset.Column) []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		switch x := v.(type) {
		case int64:
			out = append(out, float64(x))
		case float64:
			if !math.IsNaN(x) && !math.IsInf(x, 0) {
				out = append(out, x)
			}
		case time.Time:
			out = append(out, float64(x.UnixNano())/1e9)
		}
	}
	return out
}

func columnCategories(c *dataset.Column) map[string]int {
	counts := make(map[string]int)
	for _, v := range c.Values {
		if v != nil {
			counts[dataset.FormatCell(v)]++
		}
	}
	return counts
}

// isContinuous reports whether drift and distributions bin the column numerically.
func isContinuous(t dataset.ColumnType) bool {
	return t.Numeric() || t == dataset.TypeTimestamp
}

func shares(counts []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(total)
	}
	return out
}

// psi is the Population Stability Index of two share vectors over the same buckets.
func psi(ref, cur []float64) float64 {
	var sum float64
	for i := range ref {
		r := math.Max(ref[i], psiFloor)
		c := math.Max(cur[i], psiFloor)
		sum += (c - r) * math.Log(c/r)
	}
	return sum
}

// numericPSI buckets both samples by the reference quantiles.
func numericPSI(ref, cur []float64, bins int) float64 {
	sorted := append([]float64(nil), ref...)
	sort.Float64s(sorted)
	var cuts []float64
	for i := 1; i < bins; i++ {
		q := quantile(sorted, float64(i)/float64(bins))
		if len(cuts) == 0 || q > cuts[len(cuts)-1] {
			cuts = append(cuts, q)
		}
	}
	bucket := func(vals []float64) []int {
		counts := make([]int, len(cuts)+1)
		for _, x := range vals {
			counts[sort.SearchFloat64s(cuts, x)]++
		}
		return counts
	}
	return psi(shares(bucket(ref)), shares(bucket(cur)))
}

// categoricalPSI compares category frequencies over the union of categories.
func categoricalPSI(ref, cur map[string]int) float64 {
	keys := make([]string, 0, len(ref)+len(cur))
	for k := range ref {
		keys = append(keys, k)
	}
	for k := range cur {
		if _, ok := ref[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	rc := make([]int, len(keys))
	cc := make([]int, len(keys))
	for i, k := range keys {
		rc[i] = ref[k]
		cc[i] = cur[k]
	}
	return psi(shares(rc), shares(cc))
}

// equalWidthHistogram bins both samples over their combined range.
func equalWidthHistogram(ref, cur []float64, bins int) (edges []float64, refCounts, curCounts []int) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vals := range [][]float64{ref, cur} {
		for _, x := range vals {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	if lo == hi {
		bins = 1
	}
	edges = make([]float64, bins+1)
	width := hi/float64(bins) - lo/float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	bucket := func(vals []float64) []int {
		counts := make([]int, bins)
		for _, x := range vals {
			i := bins - 1
			if f := (x - lo) / width; width > 0 && f < float64(bins) {
				i = max(int(f), 0)
			}
			counts[i]++
		}
		return counts
	}
	return edges, bucket(ref), bucket(cur)
}

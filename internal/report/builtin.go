package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/driftdash/internal/dataset"
)

// Builtin is the engine implemented in this package. It computes descriptive
// statistics and Population Stability Index drift scores and renders them as
// a self-contained HTML document.
type Builtin struct {
	settings Settings
	now      func() time.Time
}

// NewBuiltin creates the built-in engine; zero settings take their defaults.
func NewBuiltin(s Settings) *Builtin {
	return &Builtin{settings: s.withDefaults(), now: time.Now}
}

// Run validates both slices against cfg and computes the report.
func (b *Builtin) Run(ctx context.Context, cfg Config, reference, current *dataset.Table) (Artifact, error) {
	if cfg == nil {
		return nil, &MetricComputationError{Err: fmt.Errorf("no report configuration")}
	}
	k := cfg.Kind()
	if err := ctx.Err(); err != nil {
		return nil, &MetricComputationError{Kind: k, Err: err}
	}
	if err := validate(k, cfg, reference, current); err != nil {
		return nil, err
	}

	var sections []Section
	switch c := cfg.(type) {
	case DatasetSummaryConfig:
		sections = b.datasetSummary(reference, current)
	case DatasetMissingValuesConfig:
		sections = b.missingValues(reference, current)
	case ColumnSummaryConfig:
		sections = b.columnSummary(c.Column, reference, current)
	case ColumnDriftConfig:
		sections = b.columnDrift(c.Column, reference, current)
	case ColumnDistributionConfig:
		sections = b.columnDistribution(c.Column, reference, current)
	case DataDriftTableConfig:
		sections = b.driftTable(ctx, c, reference, current)
	default:
		return nil, computeErr(k, "unsupported configuration %T", cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, &MetricComputationError{Kind: k, Err: err}
	}

	runID, ok := RunIDFrom(ctx)
	if !ok {
		runID = uuid.NewString()
	}
	title := k.String()
	if col, ok := ColumnOf(cfg); ok {
		title = fmt.Sprintf("%s: %s", title, col)
	}
	return &HTMLReport{
		Title:         title,
		RunID:         runID,
		Generated:     b.now(),
		ReferenceRows: reference.NumRows(),
		CurrentRows:   current.NumRows(),
		Sections:      sections,
	}, nil
}

func validate(k Kind, cfg Config, reference, current *dataset.Table) error {
	if reference == nil || current == nil || reference.NumRows() == 0 || current.NumRows() == 0 {
		return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: reference has %d rows, current has %d",
			ErrInsufficientData, rowsOf(reference), rowsOf(current))}
	}
	rc, cc := reference.Columns(), current.Columns()
	if len(rc) != len(cc) {
		return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: %d columns vs %d", ErrSchemaMismatch, len(rc), len(cc))}
	}
	for i := range rc {
		if rc[i].Name != cc[i].Name || rc[i].Type != cc[i].Type {
			return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: %s (%s) vs %s (%s)",
				ErrSchemaMismatch, rc[i].Name, rc[i].Type, cc[i].Name, cc[i].Type)}
		}
	}
	col, scoped := ColumnOf(cfg)
	if !scoped {
		return nil
	}
	for _, side := range []struct {
		name string
		t    *dataset.Table
	}{{"reference", reference}, {"current", current}} {
		c, ok := side.t.Column(col)
		if !ok {
			return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: %q in %s", ErrColumnMissing, col, side.name)}
		}
		if c.Missing() == c.Len() {
			return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: %q has no values in %s", ErrInsufficientData, col, side.name)}
		}
		if c.Type.Numeric() && len(columnNumbers(c)) == 0 {
			return &MetricComputationError{Kind: k, Err: fmt.Errorf("%w: %q has no finite values in %s", ErrInsufficientData, col, side.name)}
		}
	}
	return nil
}

func rowsOf(t *dataset.Table) int {
	if t == nil {
		return 0
	}
	return t.NumRows()
}

type tableStats struct {
	rows, cols, missing   int
	byType                map[dataset.ColumnType]int
	constant, emptyCols   int
	emptyRows, duplicated int
}

func summarize(t *dataset.Table) tableStats {
	s := tableStats{rows: t.NumRows(), cols: t.NumCols(), missing: t.Missing(), byType: map[dataset.ColumnType]int{}}
	for _, c := range t.Columns() {
		s.byType[c.Type]++
		switch distinct := len(columnCategories(c)); {
		case distinct == 0:
			s.emptyCols++
		case distinct == 1:
			s.constant++
		}
	}
	seen := make(map[string]struct{}, t.NumRows())
	var key strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		key.Reset()
		empty := true
		for _, v := range row {
			if v == nil {
				key.WriteByte(0)
			} else {
				empty = false
				key.WriteString(dataset.FormatCell(v))
			}
			key.WriteByte(0x1f)
		}
		if empty {
			s.emptyRows++
		}
		if _, dup := seen[key.String()]; dup {
			s.duplicated++
		} else {
			seen[key.String()] = struct{}{}
		}
	}
	return s
}

var compareHeader = []string{"Metric", "Reference", "Current"}

func compareRow(label, ref, cur string) []Cell {
	return []Cell{{Text: label}, {Text: ref}, {Text: cur}}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }

func pct(n, of int) string {
	if of == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100*float64(n)/float64(of))
}

func (b *Builtin) datasetSummary(reference, current *dataset.Table) []Section {
	r, c := summarize(reference), summarize(current)
	g := &Grid{Header: compareHeader}
	add := func(label string, rv, cv int) { g.Rows = append(g.Rows, compareRow(label, itoa(rv), itoa(cv))) }
	add("Rows", r.rows, c.rows)
	add("Columns", r.cols, c.cols)
	add("Missing cells", r.missing, c.missing)
	g.Rows = append(g.Rows, compareRow("Missing share", pct(r.missing, r.rows*r.cols), pct(c.missing, c.rows*c.cols)))
	for _, ct := range []dataset.ColumnType{dataset.TypeText, dataset.TypeInteger, dataset.TypeFloat, dataset.TypeTimestamp, dataset.TypeBoolean} {
		if r.byType[ct] == 0 && c.byType[ct] == 0 {
			continue
		}
		add(ct.String()+" columns", r.byType[ct], c.byType[ct])
	}
	add("Constant columns", r.constant, c.constant)
	add("Empty columns", r.emptyCols, c.emptyCols)
	add("Empty rows", r.emptyRows, c.emptyRows)
	add("Duplicated rows", r.duplicated, c.duplicated)
	return []Section{{Title: "Dataset summary", Grid: g}}
}

func (b *Builtin) missingValues(reference, current *dataset.Table) []Section {
	g := &Grid{Header: []string{"Column", "Reference missing", "Reference share", "Current missing", "Current share"}}
	var refChart, curChart Chart
	refChart.Title, curChart.Title = "Reference", "Current"
	for _, rc := range reference.Columns() {
		cc, _ := current.Column(rc.Name)
		rm, cm := rc.Missing(), cc.Missing()
		g.Rows = append(g.Rows, []Cell{
			{Text: rc.Name},
			{Text: itoa(rm)}, {Text: pct(rm, rc.Len())},
			{Text: itoa(cm)}, {Text: pct(cm, cc.Len())},
		})
		refChart.Bars = append(refChart.Bars, Bar{Label: rc.Name, Value: float64(rm), Max: float64(rc.Len()), Text: itoa(rm)})
		curChart.Bars = append(curChart.Bars, Bar{Label: rc.Name, Value: float64(cm), Max: float64(cc.Len()), Text: itoa(cm)})
	}
	rt, ct := reference.Missing(), current.Missing()
	g.Rows = append(g.Rows, []Cell{
		{Text: "Total"},
		{Text: itoa(rt)}, {Text: pct(rt, reference.NumRows()*reference.NumCols())},
		{Text: itoa(ct)}, {Text: pct(ct, current.NumRows()*current.NumCols())},
	})
	return []Section{
		{Title: "Missing values", Grid: g},
		{Title: "Missing values per column", Charts: []Chart{refChart, curChart}},
	}
}

func (b *Builtin) columnSummary(name string, reference, current *dataset.Table) []Section {
	rc, _ := reference.Column(name)
	cc, _ := current.Column(name)
	g := &Grid{Header: compareHeader}
	row := func(label, rv, cv string) { g.Rows = append(g.Rows, compareRow(label, rv, cv)) }
	row("Type", rc.Type.String(), cc.Type.String())
	row("Count", itoa(rc.Len()-rc.Missing()), itoa(cc.Len()-cc.Missing()))
	row("Missing", itoa(rc.Missing()), itoa(cc.Missing()))
	row("Missing share", pct(rc.Missing(), rc.Len()), pct(cc.Missing(), cc.Len()))
	rcat, ccat := columnCategories(rc), columnCategories(cc)
	row("Unique", itoa(len(rcat)), itoa(len(ccat)))

	switch {
	case rc.Type.Numeric():
		rs, cs := describe(columnNumbers(rc)), describe(columnNumbers(cc))
		row("Min", ftoa(rs.Min), ftoa(cs.Min))
		row("Max", ftoa(rs.Max), ftoa(cs.Max))
		row("Mean", ftoa(rs.Mean), ftoa(cs.Mean))
		row("Std", ftoa(rs.Std), ftoa(cs.Std))
		row("25%", ftoa(rs.Q25), ftoa(cs.Q25))
		row("Median", ftoa(rs.Median), ftoa(cs.Median))
		row("75%", ftoa(rs.Q75), ftoa(cs.Q75))
	case rc.Type == dataset.TypeTimestamp:
		rf, rl := timeRange(rc)
		cf, cl := timeRange(cc)
		row("First", rf, cf)
		row("Last", rl, cl)
	default:
		rt, ct := topCategories(rcat, 1), topCategories(ccat, 1)
		row("Most common", fmt.Sprintf("%s (%d)", rt[0].Value, rt[0].Count), fmt.Sprintf("%s (%d)", ct[0].Value, ct[0].Count))
	}
	return []Section{{Title: "Column summary", Grid: g}}
}

func timeRange(c *dataset.Column) (first, last string) {
	var lo, hi time.Time
	for _, v := range c.Values {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		if lo.IsZero() || t.Before(lo) {
			lo = t
		}
		if hi.IsZero() || t.After(hi) {
			hi = t
		}
	}
	return dataset.FormatCell(lo), dataset.FormatCell(hi)
}

type driftResult struct {
	Column  string
	Type    dataset.ColumnType
	Method  string
	Score   float64
	Drifted bool
}

func (b *Builtin) drift(rc, cc *dataset.Column, categoricalTest string) driftResult {
	res := driftResult{Column: rc.Name, Type: rc.Type}
	if isContinuous(rc.Type) {
		res.Method = "psi (quantile bins)"
		res.Score = numericPSI(columnNumbers(rc), columnNumbers(cc), b.settings.HistogramBins)
	} else {
		res.Method = categoricalTest
		res.Score = categoricalPSI(columnCategories(rc), columnCategories(cc))
	}
	res.Drifted = res.Score >= b.settings.DriftThreshold
	return res
}

func driftCell(drifted bool) Cell {
	if drifted {
		return Cell{Text: "Detected", Class: "drift"}
	}
	return Cell{Text: "Not detected", Class: "ok"}
}

func (b *Builtin) columnDrift(name string, reference, current *dataset.Table) []Section {
	rc, _ := reference.Column(name)
	cc, _ := current.Column(name)
	d := b.drift(rc, cc, StatTestPSI)
	g := &Grid{Header: []string{"Column", "Type", "Test", "Score", "Threshold", "Drift"}}
	g.Rows = append(g.Rows, []Cell{
		{Text: d.Column}, {Text: d.Type.String()}, {Text: d.Method},
		{Text: ftoa(d.Score)}, {Text: ftoa(b.settings.DriftThreshold)}, driftCell(d.Drifted),
	})
	note := fmt.Sprintf("Drift is not detected for column %s.", name)
	if d.Drifted {
		note = fmt.Sprintf("Drift is detected for column %s.", name)
	}
	return append([]Section{{Title: "Column drift", Note: note, Grid: g}}, b.distributionCharts(rc, cc)...)
}

func (b *Builtin) columnDistribution(name string, reference, current *dataset.Table) []Section {
	rc, _ := reference.Column(name)
	cc, _ := current.Column(name)
	return b.distributionCharts(rc, cc)
}

// distributionCharts renders a histogram for continuous columns and the top
// categories for the rest, one chart per side.
func (b *Builtin) distributionCharts(rc, cc *dataset.Column) []Section {
	ref := Chart{Title: "Reference"}
	cur := Chart{Title: "Current"}
	g := &Grid{Header: []string{"Bucket", "Reference", "Current"}}
	if isContinuous(rc.Type) {
		rv, cv := columnNumbers(rc), columnNumbers(cc)
		edges, rcounts, ccounts := equalWidthHistogram(rv, cv, b.settings.HistogramBins)
		for i := range rcounts {
			label := fmt.Sprintf("[%s, %s]", bucketEdge(rc.Type, edges[i]), bucketEdge(rc.Type, edges[i+1]))
			ref.Bars = append(ref.Bars, Bar{Label: label, Value: float64(rcounts[i]), Max: float64(len(rv)), Text: itoa(rcounts[i])})
			cur.Bars = append(cur.Bars, Bar{Label: label, Value: float64(ccounts[i]), Max: float64(len(cv)), Text: itoa(ccounts[i])})
			g.Rows = append(g.Rows, compareRow(label, itoa(rcounts[i]), itoa(ccounts[i])))
		}
	} else {
		rcat, ccat := columnCategories(rc), columnCategories(cc)
		rtotal, ctotal := rc.Len()-rc.Missing(), cc.Len()-cc.Missing()
		merged := make(map[string]int, len(rcat)+len(ccat))
		for k, v := range rcat {
			merged[k] += v
		}
		for k, v := range ccat {
			merged[k] += v
		}
		for _, top := range topCategories(merged, b.settings.TopCategories) {
			rn, cn := rcat[top.Value], ccat[top.Value]
			ref.Bars = append(ref.Bars, Bar{Label: top.Value, Value: float64(rn), Max: float64(rtotal), Text: itoa(rn)})
			cur.Bars = append(cur.Bars, Bar{Label: top.Value, Value: float64(cn), Max: float64(ctotal), Text: itoa(cn)})
			g.Rows = append(g.Rows, compareRow(top.Value, itoa(rn), itoa(cn)))
		}
	}
	return []Section{
		{Title: "Distribution of " + rc.Name, Charts: []Chart{ref, cur}},
		{Title: "Counts", Grid: g},
	}
}

func bucketEdge(t dataset.ColumnType, v float64) string {
	if t == dataset.TypeTimestamp {
		sec := int64(v)
		return dataset.FormatCell(time.Unix(sec, int64((v-float64(sec))*1e9)).UTC())
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func (b *Builtin) driftTable(ctx context.Context, cfg DataDriftTableConfig, reference, current *dataset.Table) []Section {
	test := cfg.CategoricalTest
	if test == "" {
		test = StatTestPSI
	}
	g := &Grid{Header: []string{"Column", "Type", "Test", "Score", "Drift"}}
	drifted := 0
	for _, rc := range reference.Columns() {
		if ctx.Err() != nil {
			break
		}
		cc, _ := current.Column(rc.Name)
		d := b.drift(rc, cc, test)
		if d.Drifted {
			drifted++
		}
		g.Rows = append(g.Rows, []Cell{
			{Text: d.Column}, {Text: d.Type.String()}, {Text: d.Method}, {Text: ftoa(d.Score)}, driftCell(d.Drifted),
		})
	}
	total := reference.NumCols()
	share := 0.0
	if total > 0 {
		share = float64(drifted) / float64(total)
	}
	verdict := "Dataset drift is not detected."
	if total > 0 && share >= b.settings.DriftShare {
		verdict = "Dataset drift is detected."
	}
	note := fmt.Sprintf("%s Drift is detected for %d out of %d columns (%s).", verdict, drifted, total, pct(drifted, total))
	return []Section{{Title: "Data drift", Note: note, Grid: g}}
}

package report

import (
	"html/template"
	"io"
	"time"
)

// Cell is one table cell; Class is an optional CSS class such as "drift".
type Cell struct {
	Text  string
	Class string
}

// Grid is a table with a header row.
type Grid struct {
	Header []string
	Rows   [][]Cell
}

// Bar is one horizontal bar of a chart.
type Bar struct {
	Label string
	Value float64
	Max   float64
	Text  string
}

// Chart is a labelled group of bars.
type Chart struct {
	Title string
	Bars  []Bar
}

// Section is a titled block of a report.
type Section struct {
	Title  string
	Note   string
	Grid   *Grid
	Charts []Chart
}

// HTMLReport is the self-contained HTML document produced by the built-in engine.
type HTMLReport struct {
	Title         string
	RunID         string
	Generated     time.Time
	ReferenceRows int
	CurrentRows   int
	Sections      []Section
}

// Render writes the complete document to w.
func (r *HTMLReport) Render(w io.Writer) error {
	return reportTemplate.Execute(w, r)
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="run-id" content="{{.RunID}}">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; color: #222; }
table { border-collapse: collapse; margin: 0.5rem 0 1rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
th { background: #f3f3f3; }
td.drift { color: #b00020; font-weight: bold; }
td.ok { color: #1b7f3b; }
.meta { color: #666; font-size: 0.85rem; }
.chart { display: inline-block; vertical-align: top; margin-right: 2rem; }
.chart td { border: none; padding: 0.1rem 0.4rem; }
progress { width: 12rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Run {{.RunID}} &middot; generated {{stamp .Generated}} &middot; reference rows {{.ReferenceRows}} &middot; current rows {{.CurrentRows}}</p>
{{range .Sections}}
<section>
<h2>{{.Title}}</h2>
{{if .Note}}<p>{{.Note}}</p>{{end}}
{{with .Grid}}
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td{{if .Class}} class="{{.Class}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}
{{range .Charts}}
<div class="chart">
<h3>{{.Title}}</h3>
<table>
{{range .Bars}}<tr><td>{{.Label}}</td><td><progress value="{{.Value}}" max="{{.Max}}"></progress></td><td>{{.Text}}</td></tr>
{{end}}</table>
</div>
{{end}}
</section>
{{end}}
</body>
</html>
`

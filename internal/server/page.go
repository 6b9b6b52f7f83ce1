package server

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Data drift dashboard</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; min-height: 100vh; }
nav { width: 18rem; padding: 1rem; background: #f5f5f5; border-right: 1px solid #ddd; }
main { flex: 1; padding: 1rem; }
label { display: block; margin: 0.75rem 0 0.25rem; font-weight: bold; }
select, button { width: 100%; padding: 0.3rem; }
button { margin-top: 1rem; }
.error { color: #b00020; border: 1px solid #b00020; padding: 0.75rem; background: #fff5f5; }
.meta { color: #666; font-size: 0.85rem; }
iframe { width: 100%; height: 85vh; border: 1px solid #ddd; }
</style>
</head>
<body>
<nav>
<h1>Reports</h1>
<form method="get" action="/">
<label for="kind">Report</label>
<select id="kind" name="kind">
{{range .Kinds}}<option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}{{if .NeedsColumn}} (column){{end}}</option>
{{end}}</select>
<label for="column">Column</label>
<select id="column" name="column">
{{range .Columns}}<option value="{{.Name}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>
{{end}}</select>
<button type="submit">Generate report</button>
</form>
</nav>
<main>
{{if .Error}}<div class="error" role="alert">{{.Error}}</div>
{{else if .Report}}<p class="meta">Saved to {{.Path}} &middot; run {{.RunID}} &middot; {{.Elapsed}}</p>
<iframe title="report" srcdoc="{{.Report}}"></iframe>
{{else}}<p>Select a report from the menu.</p>
{{end}}</main>
</body>
</html>
`

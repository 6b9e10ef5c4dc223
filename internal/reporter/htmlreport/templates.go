package htmlreport

import "html/template"

const styleSheet = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0 2em 2em; color: #222; }
h1 { font-size: 1.6em; } h2 { font-size: 1.25em; margin-top: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { padding: 2px 8px; border-bottom: 1px solid #ddd; text-align: left; }
th { background: #f3f3f3; }
.right { text-align: right; }
.cards { display: flex; flex-wrap: wrap; gap: 1em; }
.card { border: 1px solid #ccc; border-radius: 4px; padding: 0.5em 1em; }
.bar { display: inline-block; width: 100px; height: 0.8em; background: #c00; }
.bar span { display: block; height: 100%; background: #0a0; }
.lines td { border: none; font-family: Consolas, monospace; white-space: pre; }
.green { background: #dff0d8; } .red { background: #f2dede; } .orange { background: #fcf8e3; } .gray { background: #fff; }
.error { color: #c00; }
.tag { color: #666; font-size: 0.9em; }
`

const summaryLayoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>{{.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<h1>{{.Data.Title}}</h1>
{{if .Data.Tag}}<p class="tag">Tag: {{.Data.Tag}}</p>{{end}}
<p class="tag">Parser: {{.Data.ParserName}} &middot; Generated on: {{.Data.GeneratedAt}}</p>
{{template "cards" .Data.Cards}}
{{if .Data.RiskHotspots}}
<h2>Risk Hotspots</h2>
<table id="risk-hotspots">
<tr><th>Assembly</th><th>Class</th><th>Method</th><th class="right">Cyclomatic complexity</th><th class="right">CrapScore</th></tr>
{{range .Data.RiskHotspots}}<tr><td>{{.Assembly}}</td><td>{{if .ReportPath}}<a href="{{.ReportPath}}">{{.Class}}</a>{{else}}{{.Class}}{{end}}</td><td>{{.Method}}</td><td class="right">{{.Complexity}}</td><td class="right">{{.CrapScore}}</td></tr>
{{end}}</table>
{{end}}
<h2>Coverage</h2>
<table id="coverage">
<tr><th>Name</th><th class="right">Covered</th><th class="right">Uncovered</th><th class="right">Coverable</th><th class="right">Total</th><th class="right">Line coverage</th><th></th>{{if .Data.BranchCoverageAvailable}}<th class="right">Branch coverage</th>{{end}}<th class="right">Method coverage</th></tr>
{{range .Data.Assemblies}}
<tr class="assembly"><th>{{.Name}}</th>{{template "coverageCells" (row .Summary $.Data.BranchCoverageAvailable)}}</tr>
{{range .Classes}}<tr class="class"><td>{{if .ReportPath}}<a href="{{.ReportPath}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</td>{{template "coverageCells" (row .SummaryCoverageRow $.Data.BranchCoverageAvailable)}}</tr>
{{end}}{{end}}
</table>
<script>window.assemblies = {{.Data.AssembliesJSON}};</script>
</body>
</html>
{{define "cards"}}<div class="cards">{{range .}}<div class="card"><h3>{{.Title}}</h3><table>{{range .Rows}}<tr><th>{{.Header}}</th><td class="right">{{.Text}}</td></tr>{{end}}</table></div>{{end}}</div>{{end}}
{{define "coverageCells"}}<td class="right">{{.Row.CoveredLines}}</td><td class="right">{{.Row.UncoveredLines}}</td><td class="right">{{.Row.CoverableLines}}</td><td class="right">{{.Row.TotalLines}}</td><td class="right">{{.Row.LineCoverage}}</td><td><span class="bar"><span style="width: {{.Row.LineBar}}%"></span></span></td>{{if .Branches}}<td class="right">{{.Row.BranchCoverage}}</td>{{end}}<td class="right">{{.Row.MethodCoverage}}</td>{{end}}
`

const classDetailLayoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>{{.Data.Class.Name}} - {{.Data.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<p><a href="index.html">&lt; Back to summary</a></p>
<h1>{{.Data.Class.Name}}</h1>
<p class="tag">Assembly: {{.Data.Class.AssemblyName}}{{if .Data.Tag}} &middot; Tag: {{.Data.Tag}}{{end}} &middot; Generated on: {{.Data.GeneratedAt}}</p>
{{template "cards" .Data.Class.Cards}}
{{with .Data.Class.HistoricCoverages}}
<h2>Coverage history</h2>
<table id="history">
<tr><th>Execution time</th><th>Tag</th><th class="right">Line coverage</th><th class="right">Branch coverage</th><th class="right">Covered</th><th class="right">Coverable</th></tr>
{{range .}}<tr><td>{{.ExecutionTime}}</td><td>{{.Tag}}</td><td class="right">{{.LineCoverage}}</td><td class="right">{{.BranchCoverage}}</td><td class="right">{{.CoveredLines}}</td><td class="right">{{.CoverableLines}}</td></tr>
{{end}}</table>
{{end}}
{{if .Data.Class.Metrics}}
<h2>Metrics</h2>
<table id="metrics">
<tr><th>Method</th>{{range .Data.Class.MetricHeaders}}<th class="right">{{.}}</th>{{end}}</tr>
{{range .Data.Class.Metrics}}<tr><td><a href="#{{.Anchor}}">{{.Name}}</a></td>{{range .Values}}<td class="right">{{.}}</td>{{end}}</tr>
{{end}}</table>
{{end}}
{{with .Data.Class.CodeElements}}
<h2>Methods/Properties</h2>
<ul id="code-elements">
{{range .}}<li><a href="#{{.Anchor}}" title="{{.FullName}}">{{if .IsProperty}}[P] {{end}}{{.Name}}</a> <span class="tag">{{.Coverage}}</span></li>
{{end}}</ul>
{{end}}
<h2>File(s)</h2>
{{range .Data.Class.Files}}
<h3 id="file{{.Index}}">{{.Path}}</h3>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}
<table class="lines">
<tr><th>#</th><th>Line</th><th>Branches</th><th>Source</th></tr>
{{range .Lines}}<tr class="{{.Status}}" id="{{.Anchor}}"><td class="right">{{.Visits}}</td><td class="right">{{.Number}}</td><td class="right">{{.Branches}}</td><td>{{.Content}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
{{define "cards"}}<div class="cards">{{range .}}<div class="card"><h3>{{.Title}}</h3><table>{{range .Rows}}<tr><th>{{.Header}}</th><td class="right">{{.Text}}</td></tr>{{end}}</table></div>{{end}}</div>{{end}}
`

// pageData wraps the page specific data with the shared style sheet.
type pageData struct {
	Title string
	Style template.CSS
	Data  any
}

type coverageCellsData struct {
	Row      SummaryCoverageRow
	Branches bool
}

var templateFuncs = template.FuncMap{
	"row": func(r SummaryCoverageRow, branches bool) coverageCellsData {
		return coverageCellsData{Row: r, Branches: branches}
	},
}

var (
	summaryTemplate     = template.Must(template.New("summary").Funcs(templateFuncs).Parse(summaryLayoutTemplate))
	classDetailTemplate = template.Must(template.New("classDetail").Funcs(templateFuncs).Parse(classDetailLayoutTemplate))
)

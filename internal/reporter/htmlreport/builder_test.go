package htmlreport

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IgorBayerl/covreport/internal/logging"
	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/reporting"
	"github.com/IgorBayerl/covreport/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type mockReportConfig struct {
	targetDir string
	title     string
	tag       string
}

func (m *mockReportConfig) ReportFiles() []string                  { return nil }
func (m *mockReportConfig) TargetDirectory() string                { return m.targetDir }
func (m *mockReportConfig) SourceDirectories() []string            { return nil }
func (m *mockReportConfig) HistoryDirectory() string               { return "" }
func (m *mockReportConfig) ReportTypes() []string                  { return []string{"Html"} }
func (m *mockReportConfig) AssemblyFilters() []string              { return nil }
func (m *mockReportConfig) ClassFilters() []string                 { return nil }
func (m *mockReportConfig) FileFilters() []string                  { return nil }
func (m *mockReportConfig) VerbosityLevel() logging.VerbosityLevel { return logging.Info }
func (m *mockReportConfig) Tag() string                            { return m.tag }
func (m *mockReportConfig) Title() string                          { return m.title }
func (m *mockReportConfig) InvalidReportFilePatterns() []string    { return nil }
func (m *mockReportConfig) MetricsFile() string                    { return "" }

func newTestBuilder(t *testing.T) *HtmlReportBuilder {
	t.Helper()
	return newTestBuilderWithLogger(t, nil)
}

func newTestBuilderWithLogger(t *testing.T, logger *slog.Logger) *HtmlReportBuilder {
	t.Helper()
	dir := t.TempDir()
	ctx := reporting.NewReportContext(&mockReportConfig{targetDir: dir, title: "My Report", tag: "build-7"}, settings.NewSettings(), logger)
	b := NewHtmlReportBuilder(dir, ctx)
	b.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return b
}

func newCalculatorClass() (*model.Assembly, *model.Class, []*model.FileAnalysis) {
	asm := model.NewAssembly("MyApp.dll")
	class := model.NewClass("MyApp.Calculator", "MyApp.Calculator", asm)
	quota := 50.0
	class.Files = append(class.Files, &model.CodeFile{
		Path:           "/src/Calculator.cs",
		TotalLines:     3,
		CoverableLines: 2,
		CoveredLines:   1,
		Lines: []model.Line{
			{Number: 2, Hits: 3, IsBranchPoint: true, CoveredBranches: 1, TotalBranches: 2, LineVisitStatus: model.PartiallyCovered},
			{Number: 3, Hits: 0, LineVisitStatus: model.NotCovered},
		},
		CodeElements: []model.CodeElement{
			{Name: "Less(...)", FullName: "Less(int, int)", Type: model.MethodElementType, FirstLine: 2, LastLine: 3, CoverageQuota: &quota},
		},
	})
	method := model.Method{Name: "Less", DisplayName: "Less(int, int)", FirstLine: 2, LastLine: 3, LineRate: 0.5, Complexity: 2}
	method.MethodMetrics = method.StandardMetrics("Less(...)")
	class.Methods = append(class.Methods, method)
	class.AggregateMetrics()
	class.AddHistoricCoverage(model.HistoricCoverage{
		ExecutionTime:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Tag:            "build-6",
		CoveredLines:   1,
		CoverableLines: 2,
	})
	asm.AddClass(class)
	asm.AggregateMetrics()

	analyses := []*model.FileAnalysis{{
		Path: "/src/Calculator.cs",
		Lines: []model.LineAnalysis{
			{LineNumber: 1, LineContent: "class Calculator {", LineVisits: -1, LineVisitStatus: model.NotCoverable},
			{LineNumber: 2, LineContent: "  return a < b;", LineVisits: 3, LineVisitStatus: model.PartiallyCovered, CoveredBranches: 1, TotalBranches: 2},
			{LineNumber: 3, LineContent: "}", LineVisits: 0, LineVisitStatus: model.NotCovered},
		},
	}}
	return asm, class, analyses
}

func parseHTMLFile(t *testing.T, path string) *html.Node {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := html.Parse(f)
	require.NoError(t, err)
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findByID(t *testing.T, doc *html.Node, id string) *html.Node {
	t.Helper()
	nodes := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "id") == id })
	require.Len(t, nodes, 1, "element #%s", id)
	return nodes[0]
}

func elements(n *html.Node, tag string) []*html.Node {
	return findAll(n, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == tag })
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for _, t := range findAll(n, func(c *html.Node) bool { return c.Type == html.TextNode }) {
		sb.WriteString(t.Data)
	}
	return sb.String()
}

func TestReportType(t *testing.T) {
	assert.Equal(t, "Html", newTestBuilder(t).ReportType())
}

func TestCreateClassReport_WritesPage(t *testing.T) {
	b := newTestBuilder(t)
	_, class, analyses := newCalculatorClass()

	require.NoError(t, b.CreateClassReport(class, analyses))

	page := filepath.Join(b.OutputDir, "MyAppCalculator.html")
	require.FileExists(t, page)
	doc := parseHTMLFile(t, page)

	titles := elements(doc, "title")
	require.Len(t, titles, 1)
	assert.Equal(t, "MyApp.Calculator - My Report", textContent(titles[0]))

	line2 := findByID(t, doc, "file0_line2")
	assert.Equal(t, "orange", attr(line2, "class"))
	cells := elements(line2, "td")
	require.Len(t, cells, 4)
	assert.Equal(t, "3", textContent(cells[0]))
	assert.Equal(t, "1/2", textContent(cells[2]))
	assert.Equal(t, "  return a < b;", textContent(cells[3]), "source text is escaped and round-trips")

	line1 := findByID(t, doc, "file0_line1")
	assert.Equal(t, "gray", attr(line1, "class"))
	assert.Equal(t, "", textContent(elements(line1, "td")[0]))
	assert.Equal(t, "red", attr(findByID(t, doc, "file0_line3"), "class"))

	history := findByID(t, doc, "history")
	rows := elements(history, "tr")
	require.Len(t, rows, 2)
	assert.Contains(t, textContent(rows[1]), "2024-01-02 03:04:05")
	assert.Contains(t, textContent(rows[1]), "build-6")
	assert.Contains(t, textContent(rows[1]), "50.0%")

	metrics := findByID(t, doc, "metrics")
	metricRows := elements(metrics, "tr")
	require.Len(t, metricRows, 2)
	assert.Contains(t, textContent(metricRows[1]), "Less(...)")
	links := elements(metricRows[1], "a")
	require.Len(t, links, 1)
	assert.Equal(t, "#file0_line2", attr(links[0], "href"))

	codeElements := findByID(t, doc, "code-elements")
	assert.Contains(t, textContent(codeElements), "Less(...)")
	assert.Contains(t, textContent(codeElements), "50.0%")
}

func TestCreateClassReport_LogsThroughContextLogger(t *testing.T) {
	var global, scoped bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&global, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	b := newTestBuilderWithLogger(t, slog.New(slog.NewTextHandler(&scoped, &slog.HandlerOptions{Level: slog.LevelDebug})))
	_, class, analyses := newCalculatorClass()

	require.NoError(t, b.CreateClassReport(class, analyses))

	assert.Contains(t, scoped.String(), "Class report written")
	assert.Contains(t, scoped.String(), "file=MyAppCalculator.html")
	assert.Empty(t, global.String())
}

func TestCreateClassReport_MissingSourceShowsError(t *testing.T) {
	b := newTestBuilder(t)
	_, class, _ := newCalculatorClass()
	analyses := []*model.FileAnalysis{{
		Path:            "/src/Calculator.cs",
		Lines:           []model.LineAnalysis{},
		AdditionalError: "File '/src/Calculator.cs' does not exist (any more)",
	}}

	require.NoError(t, b.CreateClassReport(class, analyses))

	doc := parseHTMLFile(t, filepath.Join(b.OutputDir, "MyAppCalculator.html"))
	errs := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "class") == "error" })
	require.Len(t, errs, 1)
	assert.Contains(t, textContent(errs[0]), "does not exist")
	assert.Empty(t, findAll(doc, func(n *html.Node) bool { return attr(n, "id") == "file0_line1" }))
}

func TestCreateClassReport_UniqueNames(t *testing.T) {
	b := newTestBuilder(t)
	asm := model.NewAssembly("MyApp")
	first := model.NewClass("A.Service", "", asm)
	second := model.NewClass("B.Service", "", asm)

	require.NoError(t, b.CreateClassReport(first, nil))
	require.NoError(t, b.CreateClassReport(second, nil))
	require.NoError(t, b.CreateClassReport(first, nil), "rendering a class again reuses its page")

	assert.FileExists(t, filepath.Join(b.OutputDir, "MyAppService.html"))
	assert.FileExists(t, filepath.Join(b.OutputDir, "MyAppService2.html"))
	assert.Equal(t, "MyAppService.html", b.classReportFilenames[classKey("MyApp", "A.Service")])
	assert.Equal(t, "MyAppService2.html", b.classReportFilenames[classKey("MyApp", "B.Service")])
	assert.Len(t, b.existingFilenames, 2)
}

func TestCreateClassReport_OutputDirError(t *testing.T) {
	b := newTestBuilder(t)
	blocker := filepath.Join(b.OutputDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	b.OutputDir = filepath.Join(blocker, "nested")

	_, class, analyses := newCalculatorClass()
	err := b.CreateClassReport(class, analyses)
	require.Error(t, err)
	assert.Empty(t, b.classReportFilenames, "a failed page is not linked from the summary")
}

func TestCreateSummaryReport_LinksRenderedClasses(t *testing.T) {
	b := newTestBuilder(t)
	asm, class, analyses := newCalculatorClass()
	unrendered := model.NewClass("MyApp.Parser", "MyApp.Parser", asm)
	asm.AddClass(unrendered)
	asm.AggregateMetrics()

	require.NoError(t, b.CreateClassReport(class, analyses))

	summary := model.NewSummaryResult([]*model.Assembly{asm}, "Cobertura", true, nil)
	require.NoError(t, b.CreateSummaryReport(summary))

	index := filepath.Join(b.OutputDir, "index.html")
	require.FileExists(t, index)
	doc := parseHTMLFile(t, index)

	assert.Equal(t, "My Report", textContent(elements(doc, "h1")[0]))
	assert.Contains(t, textContent(doc), "Tag: build-7")
	assert.Contains(t, textContent(doc), "Generated on: 2024-05-06 07:08:09")

	coverage := findByID(t, doc, "coverage")
	classRows := findAll(coverage, func(n *html.Node) bool { return n.Type == html.ElementNode && attr(n, "class") == "class" })
	require.Len(t, classRows, 2)

	links := elements(classRows[0], "a")
	require.Len(t, links, 1)
	assert.Equal(t, "MyAppCalculator.html", attr(links[0], "href"))
	assert.Equal(t, "MyApp.Calculator", textContent(links[0]))
	assert.Contains(t, textContent(classRows[0]), "50.0%")

	assert.Empty(t, elements(classRows[1], "a"), "a class without page is listed without link")
	assert.Contains(t, textContent(classRows[1]), "MyApp.Parser")

	scripts := elements(doc, "script")
	require.Len(t, scripts, 1)
	assert.Contains(t, textContent(scripts[0]), `"rp":"MyAppCalculator.html"`)

	assert.Empty(t, findAll(doc, func(n *html.Node) bool { return attr(n, "id") == "risk-hotspots" }))
}

func TestCreateSummaryReport_RiskHotspots(t *testing.T) {
	b := newTestBuilder(t)
	asm := model.NewAssembly("MyApp")
	class := model.NewClass("MyApp.Engine", "", asm)
	complex := model.Method{Name: "Run", DisplayName: "Run(string)", FirstLine: 10, LineRate: 0, Complexity: 20}
	complex.MethodMetrics = complex.StandardMetrics("Run(...)")
	simple := model.Method{Name: "Stop", DisplayName: "Stop()", FirstLine: 40, LineRate: 1, Complexity: 1}
	simple.MethodMetrics = simple.StandardMetrics("Stop()")
	class.Methods = []model.Method{simple, complex}
	class.AggregateMetrics()
	asm.AddClass(class)

	require.NoError(t, b.CreateSummaryReport(model.NewSummaryResult([]*model.Assembly{asm}, "GoCover", false, nil)))

	doc := parseHTMLFile(t, filepath.Join(b.OutputDir, "index.html"))
	rows := elements(findByID(t, doc, "risk-hotspots"), "tr")
	require.Len(t, rows, 2)
	assert.Contains(t, textContent(rows[1]), "Run(...)")
	assert.Contains(t, textContent(rows[1]), "420.00")
}

func TestCreateSummaryReport_EmptySummary(t *testing.T) {
	b := newTestBuilder(t)

	require.NoError(t, b.CreateSummaryReport(model.NewSummaryResult(nil, "GoCover", false, nil)))

	doc := parseHTMLFile(t, filepath.Join(b.OutputDir, "index.html"))
	assert.Contains(t, textContent(elements(doc, "script")[0]), "window.assemblies = []")
}

package textsummary

import (
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
)

type mockReportConfig struct {
	tag string
}

func (m *mockReportConfig) ReportFiles() []string                  { return nil }
func (m *mockReportConfig) TargetDirectory() string                { return "" }
func (m *mockReportConfig) SourceDirectories() []string            { return nil }
func (m *mockReportConfig) HistoryDirectory() string               { return "" }
func (m *mockReportConfig) ReportTypes() []string                  { return []string{"TextSummary"} }
func (m *mockReportConfig) AssemblyFilters() []string              { return nil }
func (m *mockReportConfig) ClassFilters() []string                 { return nil }
func (m *mockReportConfig) FileFilters() []string                  { return nil }
func (m *mockReportConfig) VerbosityLevel() logging.VerbosityLevel { return logging.Info }
func (m *mockReportConfig) Tag() string                            { return m.tag }
func (m *mockReportConfig) Title() string                          { return "Coverage Report" }
func (m *mockReportConfig) InvalidReportFilePatterns() []string    { return nil }
func (m *mockReportConfig) MetricsFile() string                    { return "" }

func newTestBuilder(t *testing.T, tag string) *TextReportBuilder {
	t.Helper()
	ctx := reporting.NewReportContext(&mockReportConfig{tag: tag}, settings.NewSettings(), nil)
	b := NewTextReportBuilder(t.TempDir(), ctx)
	b.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return b
}

func newClass(asm *model.Assembly, name string, covered, valid int, branches *[2]int) *model.Class {
	c := model.NewClass(name, "", asm)
	f := &model.CodeFile{Path: "/src/" + name, CoveredLines: covered, CoverableLines: valid, TotalLines: valid + 2}
	if branches != nil {
		f.Lines = []model.Line{{Number: 1, Hits: 1, IsBranchPoint: true, CoveredBranches: branches[0], TotalBranches: branches[1]}}
	}
	c.Files = append(c.Files, f)
	c.Methods = []model.Method{{Name: "Run", LineRate: 1}, {Name: "Stop", LineRate: 0}}
	c.AggregateMetrics()
	asm.AddClass(c)
	return c
}

func readSummary(t *testing.T, b *TextReportBuilder) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(b.OutputDir, "Summary.txt"))
	require.NoError(t, err)
	return string(content)
}

func TestReportType(t *testing.T) {
	assert.Equal(t, "TextSummary", newTestBuilder(t, "").ReportType())
}

func TestCreateClassReport_WritesNothing(t *testing.T) {
	b := newTestBuilder(t, "")
	asm := model.NewAssembly("App")
	class := newClass(asm, "App.Service", 1, 2, nil)

	require.NoError(t, b.CreateClassReport(class, nil))

	entries, err := os.ReadDir(b.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateSummaryReport_LineCoverageOnly(t *testing.T) {
	b := newTestBuilder(t, "")
	asm := model.NewAssembly("App")
	newClass(asm, "App.Service", 3, 4, nil)
	newClass(asm, "App.Repository", 1, 4, nil)
	asm.AggregateMetrics()
	summary := model.NewSummaryResult([]*model.Assembly{asm}, "GoCover", false, nil)

	require.NoError(t, b.CreateSummaryReport(summary))
	content := readSummary(t, b)

	assert.True(t, strings.HasPrefix(content, "Summary\n"))
	assert.Contains(t, content, "Generated on:           2024-05-06 07:08:09")
	assert.Contains(t, content, "Parser:                 GoCover")
	assert.Contains(t, content, "Classes:                2")
	assert.Contains(t, content, "Line coverage:          50.0%")
	assert.Contains(t, content, "Method coverage:        50.0% (2 of 4)")
	assert.NotContains(t, content, "Tag:")
	assert.NotContains(t, content, "Branch coverage")

	lines := strings.Split(content, "\n")
	var serviceRow, repoRow string
	for _, l := range lines {
		if strings.Contains(l, "App.Service") {
			serviceRow = l
		}
		if strings.Contains(l, "App.Repository") {
			repoRow = l
		}
	}
	require.NotEmpty(t, serviceRow)
	require.NotEmpty(t, repoRow)
	assert.Contains(t, serviceRow, "75.0%")
	assert.Contains(t, repoRow, "25.0%")
	assert.Contains(t, content, "Name")
	assert.Contains(t, content, "Method")
}

func TestCreateSummaryReport_WithBranchesAndTag(t *testing.T) {
	b := newTestBuilder(t, "nightly")
	asm := model.NewAssembly("App")
	newClass(asm, "App.Service", 3, 4, &[2]int{1, 4})
	asm.AggregateMetrics()
	summary := model.NewSummaryResult([]*model.Assembly{asm}, "Cobertura", true, nil)

	require.NoError(t, b.CreateSummaryReport(summary))
	content := readSummary(t, b)

	assert.Contains(t, content, "Tag:                    nightly")
	assert.Contains(t, content, "Branch coverage:        25.0% (1 of 4)")
	assert.Contains(t, content, "Branch")
}

func TestCreateSummaryReport_Empty(t *testing.T) {
	b := newTestBuilder(t, "")

	require.NoError(t, b.CreateSummaryReport(model.NewSummaryResult(nil, "GoCover", false, nil)))
	content := readSummary(t, b)

	assert.Contains(t, content, "Line coverage:          n/a")
	assert.Contains(t, content, "Classes:                0")
}

func TestCreateSummaryReport_UnwritableDir(t *testing.T) {
	b := newTestBuilder(t, "")
	blocker := filepath.Join(b.OutputDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	b.OutputDir = filepath.Join(blocker, "out")

	assert.Error(t, b.CreateSummaryReport(model.NewSummaryResult(nil, "GoCover", false, nil)))
}

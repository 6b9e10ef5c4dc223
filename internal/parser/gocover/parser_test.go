package gocover

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser/filtering"
	"github.com/IgorBayerl/covreport/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileInfo implements fs.FileInfo for testing.
type MockFileInfo struct {
	name string
}

func (m MockFileInfo) Name() string       { return m.name }
func (m MockFileInfo) Size() int64        { return 0 }
func (m MockFileInfo) Mode() fs.FileMode  { return 0 }
func (m MockFileInfo) ModTime() time.Time { return time.Now() }
func (m MockFileInfo) IsDir() bool        { return false }
func (m MockFileInfo) Sys() interface{}   { return nil }

// MockFileReader for testing without hitting the disk.
type MockFileReader struct {
	Files map[string]string
}

func (m *MockFileReader) ReadFile(path string) ([]string, error) {
	content, ok := m.Files[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return strings.Split(content, "\n"), nil
}

func (m *MockFileReader) CountLines(path string) (int, error) {
	lines, err := m.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

func (m *MockFileReader) Stat(name string) (fs.FileInfo, error) {
	if _, ok := m.Files[name]; ok {
		return MockFileInfo{name: filepath.Base(name)}, nil
	}
	return nil, os.ErrNotExist
}

// mockParserConfig for providing test configuration.
type mockParserConfig struct {
	srcDirs        []string
	assemblyFilter filtering.IFilter
	classFilter    filtering.IFilter
	fileFilter     filtering.IFilter
	settings       *settings.Settings
}

func (m *mockParserConfig) SourceDirectories() []string        { return m.srcDirs }
func (m *mockParserConfig) AssemblyFilters() filtering.IFilter { return m.assemblyFilter }
func (m *mockParserConfig) ClassFilters() filtering.IFilter    { return m.classFilter }
func (m *mockParserConfig) FileFilters() filtering.IFilter     { return m.fileFilter }
func (m *mockParserConfig) Settings() *settings.Settings       { return m.settings }

func newTestConfig() *mockParserConfig {
	noFilter, _ := filtering.NewDefaultFilter(nil)
	return &mockParserConfig{
		srcDirs:        []string{"/project/src"},
		assemblyFilter: noFilter,
		classFilter:    noFilter,
		fileFilter:     noFilter,
		settings:       settings.NewSettings(),
	}
}

const calcSource = `package calc

func Add(a, b int) int {
	return a + b
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}`

const calcProfile = `mode: set
example.com/calc/calc/calc.go:3.24,5.2 1 1
example.com/calc/calc/calc.go:7.21,8.12 1 1
example.com/calc/calc/calc.go:8.12,10.3 1 0
example.com/calc/calc/calc.go:11.2,11.10 1 1
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coverage.out")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newCalcReader(withGoMod bool) *MockFileReader {
	files := map[string]string{
		"/project/src/calc/calc.go": calcSource,
	}
	if withGoMod {
		files["/project/src/go.mod"] = "module example.com/calc\n\ngo 1.22"
	}
	return &MockFileReader{Files: files}
}

func TestSupportsFile(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected bool
	}{
		{name: "ValidGoCoverFile", content: "mode: set\nfile.go:1.1,2.2 1 1\n", expected: true},
		{name: "AtomicMode", content: "mode: atomic\n", expected: true},
		{name: "InvalidFile_WrongPrefix", content: "not mode: set\n", expected: false},
		{name: "InvalidFile_Xml", content: "<?xml version=\"1.0\"?>\n<coverage/>", expected: false},
		{name: "InvalidFile_Empty", content: "", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeProfile(t, tc.content)
			p := NewGoCoverParser(nil)
			assert.Equal(t, tc.expected, p.SupportsFile(path))
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		p := NewGoCoverParser(nil)
		assert.False(t, p.SupportsFile(filepath.Join(t.TempDir(), "nope.out")))
	})
}

func TestParse_BuildsPackageClass(t *testing.T) {
	p := NewGoCoverParser(newCalcReader(true))

	result, err := p.Parse(writeProfile(t, calcProfile), newTestConfig())
	require.NoError(t, err)

	assert.Equal(t, "GoCover", result.ParserName)
	assert.False(t, result.SupportsBranchCoverage)
	assert.Equal(t, []string{"/project/src"}, result.SourceDirectories)
	require.NotNil(t, result.MinimumTimeStamp)
	assert.Equal(t, result.MinimumTimeStamp, result.MaximumTimeStamp)

	require.Len(t, result.Assemblies, 1)
	asm := result.Assemblies[0]
	assert.Equal(t, "example.com/calc", asm.Name)
	require.Len(t, asm.Classes, 1)

	class := asm.Classes[0]
	assert.Equal(t, "example.com/calc/calc", class.Name)
	assert.Equal(t, "calc", class.DisplayName)
	assert.Same(t, asm, class.Assembly)

	require.Len(t, class.Files, 1)
	file := class.Files[0]
	assert.Equal(t, "/project/src/calc/calc.go", file.Path)
	assert.Equal(t, 12, file.TotalLines)
	assert.Equal(t, 6, file.CoverableLines)
	assert.Equal(t, 5, file.CoveredLines)

	var numbers []int
	for _, l := range file.Lines {
		numbers = append(numbers, l.Number)
	}
	assert.Equal(t, []int{3, 4, 7, 8, 9, 11}, numbers, "closing brace lines are not coverable")
	assert.Equal(t, model.NotCovered, file.Lines[4].LineVisitStatus)
	assert.Equal(t, 1, file.Lines[3].Hits, "a line shared by two blocks keeps the highest count")

	assert.Equal(t, 5, class.LinesCovered)
	assert.Equal(t, 6, class.LinesValid)
	assert.Nil(t, class.BranchesValid)
	assert.Equal(t, 5, asm.LinesCovered)
	assert.Equal(t, 6, asm.LinesValid)
}

func TestParse_MethodMetrics(t *testing.T) {
	p := NewGoCoverParser(newCalcReader(true))

	result, err := p.Parse(writeProfile(t, calcProfile), newTestConfig())
	require.NoError(t, err)
	class := result.Assemblies[0].Classes[0]

	require.Len(t, class.Methods, 2)
	add, abs := class.Methods[0], class.Methods[1]

	assert.Equal(t, "Add", add.DisplayName)
	assert.Equal(t, 3, add.FirstLine)
	assert.Equal(t, 5, add.LastLine)
	assert.InDelta(t, 1.0, add.LineRate, 1e-9)
	assert.InDelta(t, 1.0, add.Complexity, 1e-9)

	assert.Equal(t, "Abs", abs.DisplayName)
	assert.InDelta(t, 0.75, abs.LineRate, 1e-9)
	assert.InDelta(t, 2.0, abs.Complexity, 1e-9)

	assert.Equal(t, 2, class.TotalMethods)
	assert.Equal(t, 2, class.CoveredMethods)
	assert.Equal(t, 1, class.FullyCoveredMethods)
	assert.InDelta(t, 3.0, class.Metrics["Cyclomatic complexity"], 1e-9)

	file := class.Files[0]
	require.Len(t, file.CodeElements, 2)
	assert.Equal(t, model.MethodElementType, file.CodeElements[1].Type)
	require.NotNil(t, file.CodeElements[1].CoverageQuota)
	assert.InDelta(t, 75.0, *file.CodeElements[1].CoverageQuota, 1e-9)
	require.Len(t, file.MethodMetrics, 2)

	var crap float64
	for _, m := range abs.MethodMetrics[0].Metrics {
		if m.Name == "CrapScore" {
			crap = m.Value
		}
	}
	assert.InDelta(t, model.CrapScore(0.75, 2), crap, 1e-9)
}

func TestParse_WithoutGoModUsesDefaultAssembly(t *testing.T) {
	p := NewGoCoverParser(newCalcReader(false))

	result, err := p.Parse(writeProfile(t, calcProfile), newTestConfig())
	require.NoError(t, err)

	require.Len(t, result.Assemblies, 1)
	asm := result.Assemblies[0]
	assert.Equal(t, "Default", asm.Name)
	require.Len(t, asm.Classes, 1)
	assert.Equal(t, "example.com/calc/calc", asm.Classes[0].DisplayName)
	assert.Equal(t, "/project/src/calc/calc.go", asm.Classes[0].Files[0].Path)
}

func TestParse_Filters(t *testing.T) {
	t.Run("AssemblyExcluded", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.assemblyFilter, _ = filtering.NewDefaultFilter([]string{"-example.com/calc"})

		result, err := NewGoCoverParser(newCalcReader(true)).Parse(writeProfile(t, calcProfile), cfg)
		require.NoError(t, err)
		assert.Empty(t, result.Assemblies)
	})

	t.Run("ClassExcluded", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.classFilter, _ = filtering.NewDefaultFilter([]string{"-example.com/calc/calc"})

		result, err := NewGoCoverParser(newCalcReader(true)).Parse(writeProfile(t, calcProfile), cfg)
		require.NoError(t, err)
		require.Len(t, result.Assemblies, 1)
		assert.Empty(t, result.Assemblies[0].Classes)
	})

	t.Run("FileExcluded", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.fileFilter, _ = filtering.NewDefaultFilter([]string{"-example.com/calc/calc/calc.go"}, true)

		result, err := NewGoCoverParser(newCalcReader(true)).Parse(writeProfile(t, calcProfile), cfg)
		require.NoError(t, err)
		require.Len(t, result.Assemblies, 1)
		assert.Empty(t, result.Assemblies[0].Classes)
	})
}

func TestParse_MissingSourceKeepsLineData(t *testing.T) {
	reader := &MockFileReader{Files: map[string]string{
		"/project/src/go.mod": "module example.com/calc",
	}}

	result, err := NewGoCoverParser(reader).Parse(writeProfile(t, calcProfile), newTestConfig())
	require.NoError(t, err)

	file := result.Assemblies[0].Classes[0].Files[0]
	assert.Equal(t, 8, file.CoverableLines, "without source text closing braces cannot be detected")
	assert.Empty(t, result.Assemblies[0].Classes[0].Methods)
}

func TestParse_InvalidProfile(t *testing.T) {
	_, err := NewGoCoverParser(newCalcReader(true)).Parse(writeProfile(t, "mode: set\nbroken line\n"), newTestConfig())
	assert.Error(t, err)
}

func TestParseGoSourceForFunctions_Receivers(t *testing.T) {
	src := `package stack

type Stack[T any] struct{ items []T }

func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}

func (s Stack[T]) Len() int { return len(s.items) }

func New[T any]() *Stack[T] {
	return &Stack[T]{}
}`

	funcs, err := parseGoSourceForFunctions("stack.go", strings.Split(src, "\n"))
	require.NoError(t, err)
	require.Len(t, funcs, 3)

	assert.Equal(t, "(*Stack).Push", funcs[0].DisplayName)
	assert.Equal(t, "Push", funcs[0].FuncName)
	assert.Equal(t, 5, funcs[0].StartLine)
	assert.Equal(t, 7, funcs[0].EndLine)
	assert.Equal(t, "(Stack).Len", funcs[1].DisplayName)
	assert.Equal(t, "New", funcs[2].DisplayName)
}

func TestParseGoSourceForFunctions_SyntaxError(t *testing.T) {
	_, err := parseGoSourceForFunctions("bad.go", []string{"package x", "func {"})
	assert.Error(t, err)
}

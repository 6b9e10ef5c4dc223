package model

import "fmt"

// SourceReader reads the lines of a source file.
type SourceReader interface {
	ReadFile(path string) ([]string, error)
}

// LineVisitStatus is the coverage state of a single line.
type LineVisitStatus int

const (
	NotCoverable LineVisitStatus = iota
	Covered
	NotCovered
	PartiallyCovered
)

// String returns the lowercase name of the status.
func (s LineVisitStatus) String() string {
	switch s {
	case Covered:
		return "covered"
	case NotCovered:
		return "notcovered"
	case PartiallyCovered:
		return "partiallycovered"
	default:
		return "notcoverable"
	}
}

// DetermineLineVisitStatus derives the status of a line from its hits and branches.
// Negative hits mark a line that is not coverable.
func DetermineLineVisitStatus(hits int, isBranchPoint bool, coveredBranches, totalBranches int) LineVisitStatus {
	if hits < 0 {
		return NotCoverable
	}
	if isBranchPoint && totalBranches > 0 {
		if coveredBranches == totalBranches {
			return Covered
		}
		if coveredBranches > 0 || hits > 0 {
			return PartiallyCovered
		}
		return NotCovered
	}
	if hits > 0 {
		return Covered
	}
	return NotCovered
}

// BranchCoverageDetail is the visit count of a single branch on a line.
type BranchCoverageDetail struct {
	Identifier string
	Visits     int
}

// Line holds the coverage data of a single source line.
type Line struct {
	Number          int
	Hits            int
	IsBranchPoint   bool
	Branch          []BranchCoverageDetail
	CoveredBranches int
	TotalBranches   int
	LineVisitStatus LineVisitStatus
}

// CodeElementType distinguishes methods from properties.
type CodeElementType int

const (
	MethodElementType CodeElementType = iota
	PropertyElementType
)

// CodeElement is a navigable member (method, property) of a file.
type CodeElement struct {
	Name          string
	FullName      string
	Type          CodeElementType
	FirstLine     int
	LastLine      int
	CoverageQuota *float64
}

// CodeFile is a source file of a class with its line coverage.
type CodeFile struct {
	Path           string
	Lines          []Line
	CoveredLines   int
	CoverableLines int
	TotalLines     int
	CodeElements   []CodeElement
	MethodMetrics  []MethodMetric
}

// BranchCounts returns covered and total branches over all lines.
func (f *CodeFile) BranchCounts() (covered, total int) {
	for _, l := range f.Lines {
		covered += l.CoveredBranches
		total += l.TotalBranches
	}
	return covered, total
}

// AnalyzeFile combines the coverage lines with the source text read through reader.
// A source file that cannot be read yields an analysis carrying AdditionalError.
func (f *CodeFile) AnalyzeFile(reader SourceReader) *FileAnalysis {
	analysis := &FileAnalysis{Path: f.Path, Lines: []LineAnalysis{}}

	content, err := reader.ReadFile(f.Path)
	if err != nil {
		analysis.AdditionalError = fmt.Sprintf("File '%s' does not exist (any more): %v", f.Path, err)
		return analysis
	}

	byNumber := make(map[int]*Line, len(f.Lines))
	for i := range f.Lines {
		byNumber[f.Lines[i].Number] = &f.Lines[i]
	}

	for i, text := range content {
		la := LineAnalysis{
			LineNumber:      i + 1,
			LineContent:     text,
			LineVisits:      -1,
			LineVisitStatus: NotCoverable,
		}
		if l, ok := byNumber[i+1]; ok {
			la.LineVisits = l.Hits
			la.CoveredBranches = l.CoveredBranches
			la.TotalBranches = l.TotalBranches
			la.LineVisitStatus = DetermineLineVisitStatus(l.Hits, l.IsBranchPoint, l.CoveredBranches, l.TotalBranches)
		}
		analysis.Lines = append(analysis.Lines, la)
	}
	return analysis
}

// FileAnalysis is the read-only per-file breakdown handed to renderers.
type FileAnalysis struct {
	Path            string
	Lines           []LineAnalysis
	AdditionalError string
}

// LineAnalysis is one analysed source line.
type LineAnalysis struct {
	LineNumber      int
	LineContent     string
	LineVisits      int
	LineVisitStatus LineVisitStatus
	CoveredBranches int
	TotalBranches   int
}

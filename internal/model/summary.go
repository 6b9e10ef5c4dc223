package model

// SummaryResult is the run-level aggregate handed to every renderer once,
// after all class-level rendering completed.
type SummaryResult struct {
	Assemblies             []*Assembly
	ParserName             string
	SupportsBranchCoverage bool
	SourceDirectories      []string

	TotalClasses        int
	TotalFiles          int
	LinesCovered        int
	LinesValid          int
	TotalLines          int
	BranchesCovered     *int
	BranchesValid       *int
	CoveredMethods      int
	FullyCoveredMethods int
	TotalMethods        int
}

// NewSummaryResult aggregates the counts of assemblies. Files shared by several
// classes count their total lines once.
func NewSummaryResult(assemblies []*Assembly, parserName string, supportsBranchCoverage bool, sourceDirs []string) *SummaryResult {
	s := &SummaryResult{
		Assemblies:             assemblies,
		ParserName:             parserName,
		SupportsBranchCoverage: supportsBranchCoverage,
		SourceDirectories:      sourceDirs,
	}

	var bc, bv int
	hasBranchData := false
	seenFiles := make(map[string]struct{})
	for _, a := range assemblies {
		for _, c := range a.Classes {
			s.TotalClasses++
			s.LinesCovered += c.LinesCovered
			s.LinesValid += c.LinesValid
			s.CoveredMethods += c.CoveredMethods
			s.FullyCoveredMethods += c.FullyCoveredMethods
			s.TotalMethods += c.TotalMethods
			if c.BranchesCovered != nil && c.BranchesValid != nil {
				hasBranchData = true
				bc += *c.BranchesCovered
				bv += *c.BranchesValid
			}
			for _, f := range c.Files {
				if _, ok := seenFiles[f.Path]; ok {
					continue
				}
				seenFiles[f.Path] = struct{}{}
				s.TotalFiles++
				s.TotalLines += f.TotalLines
			}
		}
	}
	if hasBranchData {
		s.BranchesCovered = &bc
		s.BranchesValid = &bv
	}
	return s
}

// LineCoverageQuota returns the overall line coverage percentage.
func (s *SummaryResult) LineCoverageQuota() *float64 {
	return quota(s.LinesCovered, s.LinesValid)
}

// BranchCoverageQuota returns the overall branch coverage percentage, nil without branch data.
func (s *SummaryResult) BranchCoverageQuota() *float64 {
	if s.BranchesCovered == nil || s.BranchesValid == nil {
		return nil
	}
	return quota(*s.BranchesCovered, *s.BranchesValid)
}

// MethodCoverageQuota returns the percentage of covered methods.
func (s *SummaryResult) MethodCoverageQuota() *float64 {
	return quota(s.CoveredMethods, s.TotalMethods)
}

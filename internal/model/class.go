package model

// Class is the unit at which a per-renderer report section is generated.
// Historic coverages form an append-only log.
type Class struct {
	Name        string
	DisplayName string
	// Assembly is a back-reference to the owning assembly as discovered by the parser.
	Assembly *Assembly

	Files             []*CodeFile
	Methods           []Method
	HistoricCoverages []HistoricCoverage
	Metrics           map[string]float64

	LinesCovered        int
	LinesValid          int
	TotalLines          int
	BranchesCovered     *int
	BranchesValid       *int
	CoveredMethods      int
	FullyCoveredMethods int
	TotalMethods        int
}

// NewClass creates a class owned by assembly.
func NewClass(name, displayName string, assembly *Assembly) *Class {
	if displayName == "" {
		displayName = name
	}
	return &Class{
		Name:        name,
		DisplayName: displayName,
		Assembly:    assembly,
		Files:       []*CodeFile{},
		Metrics:     make(map[string]float64),
	}
}

// AddHistoricCoverage appends a snapshot. Existing entries are never touched.
func (c *Class) AddHistoricCoverage(hc HistoricCoverage) {
	c.HistoricCoverages = append(c.HistoricCoverages, hc)
}

// FindFile returns the file with the given path, or nil.
func (c *Class) FindFile(path string) *CodeFile {
	for _, f := range c.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// CoveredBranchCount returns the covered branches, 0 when branch data is unavailable.
func (c *Class) CoveredBranchCount() int {
	if c.BranchesCovered == nil {
		return 0
	}
	return *c.BranchesCovered
}

// TotalBranchCount returns the total branches, 0 when branch data is unavailable.
func (c *Class) TotalBranchCount() int {
	if c.BranchesValid == nil {
		return 0
	}
	return *c.BranchesValid
}

// LineCoverageQuota returns covered/coverable lines as a percentage, nil if nothing is coverable.
func (c *Class) LineCoverageQuota() *float64 {
	return quota(c.LinesCovered, c.LinesValid)
}

// BranchCoverageQuota returns the branch coverage percentage, nil without branch data.
func (c *Class) BranchCoverageQuota() *float64 {
	return quota(c.CoveredBranchCount(), c.TotalBranchCount())
}

// MethodCoverageQuota returns the percentage of methods with at least one covered line.
func (c *Class) MethodCoverageQuota() *float64 {
	return quota(c.CoveredMethods, c.TotalMethods)
}

// AggregateMetrics recomputes line, branch and method counts from files and methods.
func (c *Class) AggregateMetrics() {
	c.LinesCovered, c.LinesValid, c.TotalLines = 0, 0, 0
	c.BranchesCovered, c.BranchesValid = nil, nil
	var bc, bv int
	hasBranchData := false
	for _, f := range c.Files {
		c.LinesCovered += f.CoveredLines
		c.LinesValid += f.CoverableLines
		c.TotalLines += f.TotalLines
		fc, fv := f.BranchCounts()
		if fv > 0 {
			hasBranchData = true
		}
		bc += fc
		bv += fv
	}
	if hasBranchData {
		c.BranchesCovered = &bc
		c.BranchesValid = &bv
	}

	c.TotalMethods = len(c.Methods)
	c.CoveredMethods, c.FullyCoveredMethods = 0, 0
	for _, m := range c.Methods {
		if m.LineRate > 0 {
			c.CoveredMethods++
		}
		if m.LineRate >= 1.0 {
			c.FullyCoveredMethods++
		}
	}
}

func quota(covered, total int) *float64 {
	if total <= 0 {
		return nil
	}
	q := float64(covered) / float64(total) * 100
	return &q
}

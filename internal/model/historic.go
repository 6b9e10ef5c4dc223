package model

import "time"

// HistoricCoverage is an immutable coverage snapshot of a class at an execution time.
type HistoricCoverage struct {
	ExecutionTime           time.Time
	Tag                     string
	CoveredLines            int
	CoverableLines          int
	TotalLines              int
	CoveredBranches         int
	TotalBranches           int
	CoveredCodeElements     int
	FullCoveredCodeElements int
	TotalCodeElements       int
}

// NewHistoricCoverage captures the current coverage state of class.
func NewHistoricCoverage(class *Class, executionTime time.Time, tag string) HistoricCoverage {
	return HistoricCoverage{
		ExecutionTime:           executionTime,
		Tag:                     tag,
		CoveredLines:            class.LinesCovered,
		CoverableLines:          class.LinesValid,
		TotalLines:              class.TotalLines,
		CoveredBranches:         class.CoveredBranchCount(),
		TotalBranches:           class.TotalBranchCount(),
		CoveredCodeElements:     class.CoveredMethods,
		FullCoveredCodeElements: class.FullyCoveredMethods,
		TotalCodeElements:       class.TotalMethods,
	}
}

// LineCoverageQuota returns the line coverage percentage of the snapshot, nil if nothing was coverable.
func (h HistoricCoverage) LineCoverageQuota() *float64 {
	return quota(h.CoveredLines, h.CoverableLines)
}

// BranchCoverageQuota returns the branch coverage percentage of the snapshot.
func (h HistoricCoverage) BranchCoverageQuota() *float64 {
	return quota(h.CoveredBranches, h.TotalBranches)
}

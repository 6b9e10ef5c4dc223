package model

import "strings"

// Assembly is a named grouping of classes, mirroring a compiled unit in the coverage data.
type Assembly struct {
	Name    string
	Classes []*Class

	LinesCovered    int
	LinesValid      int
	TotalLines      int
	BranchesCovered *int
	BranchesValid   *int
}

// NewAssembly creates an empty assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{Name: name, Classes: []*Class{}}
}

// ShortName returns the assembly name without any leading path and without a
// .dll/.exe extension.
func (a *Assembly) ShortName() string {
	name := a.Name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".dll") || strings.HasSuffix(lower, ".exe") {
		name = name[:len(name)-4]
	}
	return name
}

// AddClass appends a class, keeping discovery order.
func (a *Assembly) AddClass(class *Class) {
	a.Classes = append(a.Classes, class)
}

// FindClass returns the class with the given name, or nil.
func (a *Assembly) FindClass(name string) *Class {
	for _, c := range a.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AggregateMetrics recomputes the assembly totals from its classes.
func (a *Assembly) AggregateMetrics() {
	a.LinesCovered, a.LinesValid, a.TotalLines = 0, 0, 0
	a.BranchesCovered, a.BranchesValid = nil, nil
	var bc, bv int
	hasBranchData := false
	for _, c := range a.Classes {
		a.LinesCovered += c.LinesCovered
		a.LinesValid += c.LinesValid
		a.TotalLines += c.TotalLines
		if c.BranchesCovered != nil && c.BranchesValid != nil {
			hasBranchData = true
			bc += *c.BranchesCovered
			bv += *c.BranchesValid
		}
	}
	if hasBranchData {
		a.BranchesCovered = &bc
		a.BranchesValid = &bv
	}
}

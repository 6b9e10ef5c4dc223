package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser"
)

// MultiReportParserName is used when results of different parsers are merged.
const MultiReportParserName = "MultiReport"

// MergeParserResults merges several parser results (one per coverage file) into a
// single result. Assemblies and classes with the same name are merged, files of the
// same class are merged line by line with hit counts summed. The inputs are not modified.
func MergeParserResults(results []*parser.ParserResult) (*parser.ParserResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no parser results to merge")
	}

	merged := &parser.ParserResult{
		Assemblies:        []*model.Assembly{},
		SourceDirectories: []string{},
	}

	parserNames := make(map[string]struct{})
	seenDirs := make(map[string]struct{})
	assemblies := make(map[string]*model.Assembly)

	for i, res := range results {
		if res == nil {
			return nil, fmt.Errorf("parser result %d is nil", i)
		}
		if res.ParserName != "" {
			parserNames[res.ParserName] = struct{}{}
			merged.ParserName = res.ParserName
		}
		merged.SupportsBranchCoverage = merged.SupportsBranchCoverage || res.SupportsBranchCoverage
		merged.MinimumTimeStamp = earliest(merged.MinimumTimeStamp, res.MinimumTimeStamp)
		merged.MaximumTimeStamp = latest(merged.MaximumTimeStamp, res.MaximumTimeStamp)

		for _, dir := range res.SourceDirectories {
			if _, ok := seenDirs[dir]; !ok {
				seenDirs[dir] = struct{}{}
				merged.SourceDirectories = append(merged.SourceDirectories, dir)
			}
		}

		for _, asm := range res.Assemblies {
			target, ok := assemblies[asm.Name]
			if !ok {
				target = model.NewAssembly(asm.Name)
				assemblies[asm.Name] = target
				merged.Assemblies = append(merged.Assemblies, target)
			}
			for _, class := range asm.Classes {
				mergeClass(target, class)
			}
		}
	}

	switch len(parserNames) {
	case 0:
		merged.ParserName = "Unknown"
	case 1:
	default:
		merged.ParserName = MultiReportParserName
	}

	for _, asm := range merged.Assemblies {
		for _, class := range asm.Classes {
			for _, f := range class.Files {
				recountFile(f)
			}
			class.AggregateMetrics()
		}
		asm.AggregateMetrics()
	}
	return merged, nil
}

func mergeClass(target *model.Assembly, class *model.Class) {
	existing := target.FindClass(class.Name)
	if existing == nil {
		existing = model.NewClass(class.Name, class.DisplayName, target)
		existing.HistoricCoverages = append(existing.HistoricCoverages, class.HistoricCoverages...)
		target.AddClass(existing)
	}
	for k, v := range class.Metrics {
		existing.Metrics[k] = v
	}

	for _, f := range class.Files {
		if ef := existing.FindFile(f.Path); ef != nil {
			mergeFile(ef, f)
			continue
		}
		existing.Files = append(existing.Files, copyFile(f))
	}

	for _, m := range class.Methods {
		mergeMethod(existing, m)
	}
}

func copyFile(f *model.CodeFile) *model.CodeFile {
	cp := *f
	cp.Lines = append([]model.Line(nil), f.Lines...)
	cp.CodeElements = append([]model.CodeElement(nil), f.CodeElements...)
	cp.MethodMetrics = append([]model.MethodMetric(nil), f.MethodMetrics...)
	return &cp
}

func mergeFile(target, source *model.CodeFile) {
	byNumber := make(map[int]int, len(target.Lines))
	for i, l := range target.Lines {
		byNumber[l.Number] = i
	}

	for _, l := range source.Lines {
		i, ok := byNumber[l.Number]
		if !ok {
			byNumber[l.Number] = len(target.Lines)
			target.Lines = append(target.Lines, l)
			continue
		}
		t := &target.Lines[i]
		t.Hits += l.Hits
		t.IsBranchPoint = t.IsBranchPoint || l.IsBranchPoint
		t.TotalBranches = max(t.TotalBranches, l.TotalBranches)
		t.CoveredBranches = min(max(t.CoveredBranches, l.CoveredBranches), t.TotalBranches)
		t.LineVisitStatus = model.DetermineLineVisitStatus(t.Hits, t.IsBranchPoint, t.CoveredBranches, t.TotalBranches)
	}
	sort.SliceStable(target.Lines, func(a, b int) bool { return target.Lines[a].Number < target.Lines[b].Number })

	target.TotalLines = max(target.TotalLines, source.TotalLines)
	for _, ce := range source.CodeElements {
		if !hasCodeElement(target.CodeElements, ce) {
			target.CodeElements = append(target.CodeElements, ce)
		}
	}
}

func hasCodeElement(elements []model.CodeElement, ce model.CodeElement) bool {
	for _, e := range elements {
		if e.FullName == ce.FullName && e.FirstLine == ce.FirstLine {
			return true
		}
	}
	return false
}

func mergeMethod(class *model.Class, m model.Method) {
	for i := range class.Methods {
		existing := &class.Methods[i]
		if existing.Name != m.Name || existing.Signature != m.Signature {
			continue
		}
		if m.LineRate > existing.LineRate {
			existing.LineRate = m.LineRate
			existing.MethodMetrics = m.MethodMetrics
		}
		if m.BranchRate != nil && (existing.BranchRate == nil || *m.BranchRate > *existing.BranchRate) {
			br := *m.BranchRate
			existing.BranchRate = &br
		}
		return
	}
	class.Methods = append(class.Methods, m)
}

// recountFile recomputes the covered and coverable line counts from the lines.
func recountFile(f *model.CodeFile) {
	f.CoveredLines, f.CoverableLines = 0, 0
	for _, l := range f.Lines {
		if l.Hits < 0 {
			continue
		}
		f.CoverableLines++
		if l.Hits > 0 {
			f.CoveredLines++
		}
	}
}

func earliest(a, b *time.Time) *time.Time {
	if b == nil {
		return a
	}
	if a == nil || b.Before(*a) {
		t := *b
		return &t
	}
	return a
}

func latest(a, b *time.Time) *time.Time {
	if b == nil {
		return a
	}
	if a == nil || b.After(*a) {
		t := *b
		return &t
	}
	return a
}

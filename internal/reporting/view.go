package reporting

import (
	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser/filtering"
)

// buildFilteredView projects assemblies onto the classes accepted by both filters.
// Every returned assembly is a fresh copy; classes and files are shared, not copied.
// Assemblies rejected by the assembly filter are dropped, accepted assemblies
// without surviving classes are kept empty.
func buildFilteredView(assemblies []*model.Assembly, assemblyFilter, classFilter filtering.IFilter) []*model.Assembly {
	view := make([]*model.Assembly, 0, len(assemblies))
	for _, assembly := range assemblies {
		if assembly == nil || !assemblyFilter.IsElementIncludedInReport(assembly.Name) {
			continue
		}

		projected := model.NewAssembly(assembly.Name)
		for _, class := range assembly.Classes {
			if class != nil && classFilter.IsElementIncludedInReport(class.Name) {
				projected.AddClass(class)
			}
		}
		projected.AggregateMetrics()
		view = append(view, projected)
	}
	return view
}

func countClasses(assemblies []*model.Assembly) int {
	total := 0
	for _, a := range assemblies {
		total += len(a.Classes)
	}
	return total
}

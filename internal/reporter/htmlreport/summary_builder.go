package htmlreport

import (
	"sort"
	"strconv"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/utils"
)

const summaryFileName = "index.html"

// CreateSummaryReport writes index.html. Classes whose page was written are linked.
func (b *HtmlReportBuilder) CreateSummaryReport(summary *model.SummaryResult) error {
	data := SummaryPageData{
		Title:                   b.title(),
		Tag:                     b.tag(),
		ParserName:              summary.ParserName,
		GeneratedAt:             b.generatedAt(),
		BranchCoverageAvailable: summary.SupportsBranchCoverage && summary.BranchesValid != nil,
		Cards:                   b.buildSummaryCards(summary),
		AssembliesJSON:          []AssemblyViewModel{},
	}

	for _, asm := range summary.Assemblies {
		var coveredMethods, totalMethods int
		for _, class := range asm.Classes {
			coveredMethods += class.CoveredMethods
			totalMethods += class.TotalMethods
		}
		row := SummaryAssemblyRow{
			Name: asm.Name,
			Summary: b.coverageRow(asm.LinesCovered, asm.LinesValid, asm.TotalLines,
				quotaOf(asm.BranchesCovered, asm.BranchesValid), quotaOf(&coveredMethods, &totalMethods)),
		}
		asmJSON := AssemblyViewModel{Name: asm.Name, Classes: []ClassViewModel{}}

		for _, class := range asm.Classes {
			reportPath := b.classReportFilenames[classKey(asm.Name, class.Name)]
			row.Classes = append(row.Classes, SummaryClassRow{
				Name:       class.DisplayName,
				ReportPath: reportPath,
				SummaryCoverageRow: b.coverageRow(class.LinesCovered, class.LinesValid, class.TotalLines,
					class.BranchCoverageQuota(), class.MethodCoverageQuota()),
			})
			asmJSON.Classes = append(asmJSON.Classes, buildClassViewModelForSummary(class, reportPath))
		}

		data.Assemblies = append(data.Assemblies, row)
		data.AssembliesJSON = append(data.AssembliesJSON, asmJSON)
	}

	data.RiskHotspots = b.buildRiskHotspots(summary)

	return b.writePage(summaryTemplate, summaryFileName, data.Title, data)
}

func (b *HtmlReportBuilder) buildSummaryCards(summary *model.SummaryResult) []CardViewModel {
	decimals := b.decimalPlaces()

	cards := []CardViewModel{
		{
			Title: "Information",
			Rows: []CardRowViewModel{
				{Header: "Parser", Text: summary.ParserName},
				{Header: "Assemblies", Text: utils.FormatNumber(len(summary.Assemblies))},
				{Header: "Classes", Text: utils.FormatNumber(countTotalClasses(summary.Assemblies))},
				{Header: "Files", Text: utils.FormatNumber(countUniqueFiles(summary.Assemblies))},
			},
		},
		{
			Title: "Line coverage",
			Rows: []CardRowViewModel{
				{Header: "Covered lines", Text: utils.FormatNumber(summary.LinesCovered)},
				{Header: "Uncovered lines", Text: utils.FormatNumber(summary.LinesValid - summary.LinesCovered)},
				{Header: "Coverable lines", Text: utils.FormatNumber(summary.LinesValid)},
				{Header: "Total lines", Text: utils.FormatNumber(summary.TotalLines)},
				{Header: "Line coverage", Text: utils.FormatPercentage(summary.LineCoverageQuota(), decimals)},
			},
		},
	}

	if summary.BranchesValid != nil {
		cards = append(cards, CardViewModel{
			Title: "Branch coverage",
			Rows: []CardRowViewModel{
				{Header: "Covered branches", Text: utils.FormatNumber(*summary.BranchesCovered)},
				{Header: "Total branches", Text: utils.FormatNumber(*summary.BranchesValid)},
				{Header: "Branch coverage", Text: utils.FormatPercentage(summary.BranchCoverageQuota(), decimals)},
			},
		})
	}

	cards = append(cards, CardViewModel{
		Title: "Method coverage",
		Rows: []CardRowViewModel{
			{Header: "Covered methods", Text: utils.FormatRatio(summary.CoveredMethods, summary.TotalMethods)},
			{Header: "Fully covered methods", Text: utils.FormatRatio(summary.FullyCoveredMethods, summary.TotalMethods)},
			{Header: "Method coverage", Text: utils.FormatPercentage(summary.MethodCoverageQuota(), decimals)},
		},
	})
	return cards
}

func (b *HtmlReportBuilder) coverageRow(covered, valid, total int, branchQuota, methodQuota *float64) SummaryCoverageRow {
	decimals := b.decimalPlaces()
	lineQuota := quotaOf(&covered, &valid)
	return SummaryCoverageRow{
		CoveredLines:   utils.FormatNumber(covered),
		UncoveredLines: utils.FormatNumber(valid - covered),
		CoverableLines: utils.FormatNumber(valid),
		TotalLines:     utils.FormatNumber(total),
		LineCoverage:   utils.FormatPercentage(lineQuota, decimals),
		LineBar:        coverageBar(lineQuota),
		BranchCoverage: utils.FormatPercentage(branchQuota, decimals),
		MethodCoverage: utils.FormatPercentage(methodQuota, decimals),
	}
}

// buildRiskHotspots lists methods exceeding the complexity or CrapScore thresholds,
// worst CrapScore first.
func (b *HtmlReportBuilder) buildRiskHotspots(summary *model.SummaryResult) []RiskHotspotViewModel {
	type hotspot struct {
		vm   RiskHotspotViewModel
		crap float64
	}
	var hotspots []hotspot

	for _, asm := range summary.Assemblies {
		for _, class := range asm.Classes {
			for _, method := range class.Methods {
				var complexity, crap float64
				for _, mm := range method.MethodMetrics {
					for _, m := range mm.Metrics {
						switch m.Name {
						case "Cyclomatic complexity":
							complexity = m.Value
						case "CrapScore":
							crap = m.Value
						}
					}
				}
				if complexity < riskHotspotComplexityThreshold && crap < riskHotspotCrapScoreThreshold {
					continue
				}
				hotspots = append(hotspots, hotspot{
					vm: RiskHotspotViewModel{
						Assembly:   asm.ShortName(),
						Class:      class.DisplayName,
						ReportPath: b.classReportFilenames[classKey(asm.Name, class.Name)],
						Method:     utils.GetShortMethodName(method.DisplayName),
						Line:       method.FirstLine,
						Complexity: strconv.FormatFloat(complexity, 'f', -1, 64),
						CrapScore:  strconv.FormatFloat(crap, 'f', 2, 64),
					},
					crap: crap,
				})
			}
		}
	}

	sort.SliceStable(hotspots, func(i, j int) bool { return hotspots[i].crap > hotspots[j].crap })

	result := make([]RiskHotspotViewModel, 0, len(hotspots))
	for _, h := range hotspots {
		result = append(result, h.vm)
	}
	return result
}

func buildClassViewModelForSummary(class *model.Class, reportPath string) ClassViewModel {
	vm := ClassViewModel{
		Name:                class.DisplayName,
		ReportPath:          reportPath,
		CoveredLines:        class.LinesCovered,
		UncoveredLines:      class.LinesValid - class.LinesCovered,
		CoverableLines:      class.LinesValid,
		TotalLines:          class.TotalLines,
		CoveredBranches:     class.CoveredBranchCount(),
		TotalBranches:       class.TotalBranchCount(),
		CoveredMethods:      class.CoveredMethods,
		FullyCoveredMethods: class.FullyCoveredMethods,
		TotalMethods:        class.TotalMethods,
		HistoricCoverages:   []HistoricCoverageViewModel{},
		Metrics:             class.Metrics,
	}

	for _, hc := range class.HistoricCoverages {
		hvm := HistoricCoverageViewModel{
			ExecutionTime:   hc.ExecutionTime.Format("2006-01-02 15:04:05"),
			Tag:             hc.Tag,
			CoveredLines:    hc.CoveredLines,
			CoverableLines:  hc.CoverableLines,
			TotalLines:      hc.TotalLines,
			CoveredBranches: hc.CoveredBranches,
			TotalBranches:   hc.TotalBranches,
		}
		if q := hc.LineCoverageQuota(); q != nil {
			hvm.LineCoverageQuota = *q
		}
		if q := hc.BranchCoverageQuota(); q != nil {
			hvm.BranchCoverageQuota = *q
		}
		vm.HistoricCoverages = append(vm.HistoricCoverages, hvm)
		vm.LineCoverageHistory = append(vm.LineCoverageHistory, hvm.LineCoverageQuota)
	}
	return vm
}

func quotaOf(covered, total *int) *float64 {
	if covered == nil || total == nil || *total <= 0 {
		return nil
	}
	q := float64(*covered) / float64(*total) * 100
	return &q
}

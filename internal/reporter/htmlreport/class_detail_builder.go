package htmlreport

import (
	"fmt"
	"math"
	"strconv"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/utils"
)

// standardMetricHeaders is the column order of the metrics table.
var standardMetricHeaders = []string{"Cyclomatic complexity", "Line coverage", "Branch coverage", "CrapScore"}

// CreateClassReport renders the page of a single class.
func (b *HtmlReportBuilder) CreateClassReport(class *model.Class, fileAnalyses []*model.FileAnalysis) error {
	assemblyName, assemblyShortName := "", ""
	if class.Assembly != nil {
		assemblyName = class.Assembly.Name
		assemblyShortName = class.Assembly.ShortName()
	}

	key := classKey(assemblyName, class.Name)
	fileName, ok := b.classReportFilenames[key]
	if !ok {
		fileName = generateUniqueFilename(assemblyShortName, class.Name, b.existingFilenames)
	}

	data := ClassDetailData{
		Title:       b.title(),
		Tag:         b.tag(),
		GeneratedAt: b.generatedAt(),
		Class:       b.buildClassViewModel(class, assemblyName, fileAnalyses),
	}

	if err := b.writePage(classDetailTemplate, fileName, class.DisplayName, data); err != nil {
		return err
	}
	b.classReportFilenames[key] = fileName
	b.reportContext.Logger().Debug("Class report written", "class", class.Name, "file", fileName)
	return nil
}

func (b *HtmlReportBuilder) buildClassViewModel(class *model.Class, assemblyName string, fileAnalyses []*model.FileAnalysis) ClassDetailViewModel {
	decimals := b.decimalPlaces()

	vm := ClassDetailViewModel{
		Name:         class.DisplayName,
		AssemblyName: assemblyName,
		Cards:        b.buildClassCards(class),
	}

	for _, hc := range class.HistoricCoverages {
		vm.HistoricCoverages = append(vm.HistoricCoverages, HistoricCoverageRow{
			ExecutionTime:  hc.ExecutionTime.Format("2006-01-02 15:04:05"),
			Tag:            hc.Tag,
			LineCoverage:   utils.FormatPercentage(hc.LineCoverageQuota(), decimals),
			BranchCoverage: utils.FormatPercentage(hc.BranchCoverageQuota(), decimals),
			CoveredLines:   utils.FormatNumber(hc.CoveredLines),
			CoverableLines: utils.FormatNumber(hc.CoverableLines),
		})
	}

	fileIndexByPath := make(map[string]int, len(fileAnalyses))
	for i, fa := range fileAnalyses {
		fileIndexByPath[fa.Path] = i
		vm.Files = append(vm.Files, buildFileViewModel(i, fa))
	}

	for _, file := range class.Files {
		fileIndex := fileIndexByPath[file.Path]
		for _, ce := range file.CodeElements {
			vm.CodeElements = append(vm.CodeElements, CodeElementViewModel{
				Name:       ce.Name,
				FullName:   ce.FullName,
				Anchor:     lineAnchor(fileIndex, ce.FirstLine),
				Coverage:   utils.FormatPercentage(ce.CoverageQuota, decimals),
				IsProperty: ce.Type == model.PropertyElementType,
			})
		}
	}

	for _, method := range class.Methods {
		fileIndex := 0
		if len(class.Files) > 0 {
			fileIndex = b.fileIndexOfMethod(class, &method, fileIndexByPath)
		}
		for _, mm := range method.MethodMetrics {
			vm.Metrics = append(vm.Metrics, MethodMetricRow{
				Name:   mm.Name,
				Anchor: lineAnchor(fileIndex, mm.Line),
				Values: formatMetricValues(mm.Metrics, decimals),
			})
		}
	}
	if len(vm.Metrics) > 0 {
		vm.MetricHeaders = standardMetricHeaders
	}
	return vm
}

// fileIndexOfMethod finds the file whose code elements contain the method.
func (b *HtmlReportBuilder) fileIndexOfMethod(class *model.Class, method *model.Method, fileIndexByPath map[string]int) int {
	for _, file := range class.Files {
		for _, ce := range file.CodeElements {
			if ce.FullName == method.DisplayName && ce.FirstLine == method.FirstLine {
				return fileIndexByPath[file.Path]
			}
		}
	}
	return fileIndexByPath[class.Files[0].Path]
}

func (b *HtmlReportBuilder) buildClassCards(class *model.Class) []CardViewModel {
	decimals := b.decimalPlaces()

	cards := []CardViewModel{{
		Title: "Line coverage",
		Rows: []CardRowViewModel{
			{Header: "Covered lines", Text: utils.FormatNumber(class.LinesCovered)},
			{Header: "Uncovered lines", Text: utils.FormatNumber(class.LinesValid - class.LinesCovered)},
			{Header: "Coverable lines", Text: utils.FormatNumber(class.LinesValid)},
			{Header: "Total lines", Text: utils.FormatNumber(class.TotalLines)},
			{Header: "Line coverage", Text: utils.FormatPercentage(class.LineCoverageQuota(), decimals)},
		},
	}}

	if class.BranchesValid != nil {
		cards = append(cards, CardViewModel{
			Title: "Branch coverage",
			Rows: []CardRowViewModel{
				{Header: "Covered branches", Text: utils.FormatNumber(class.CoveredBranchCount())},
				{Header: "Total branches", Text: utils.FormatNumber(class.TotalBranchCount())},
				{Header: "Branch coverage", Text: utils.FormatPercentage(class.BranchCoverageQuota(), decimals)},
			},
		})
	}

	cards = append(cards, CardViewModel{
		Title: "Method coverage",
		Rows: []CardRowViewModel{
			{Header: "Covered methods", Text: utils.FormatRatio(class.CoveredMethods, class.TotalMethods)},
			{Header: "Fully covered methods", Text: utils.FormatRatio(class.FullyCoveredMethods, class.TotalMethods)},
			{Header: "Method coverage", Text: utils.FormatPercentage(class.MethodCoverageQuota(), decimals)},
		},
	})
	return cards
}

func buildFileViewModel(index int, fa *model.FileAnalysis) FileViewModel {
	vm := FileViewModel{Index: index, Path: fa.Path, Error: fa.AdditionalError}
	for i := range fa.Lines {
		line := &fa.Lines[i]
		vm.Lines = append(vm.Lines, LineViewModel{
			Number:   line.LineNumber,
			Anchor:   lineAnchor(index, line.LineNumber),
			Visits:   formatVisits(line),
			Branches: formatBranches(line),
			Status:   lineVisitStatusToString(line.LineVisitStatus),
			Content:  line.LineContent,
		})
	}
	return vm
}

func lineAnchor(fileIndex, line int) string {
	return fmt.Sprintf("file%d_line%d", fileIndex, line)
}

// formatMetricValues orders the metrics like standardMetricHeaders; missing ones render as "-".
func formatMetricValues(metrics []model.Metric, decimals int) []string {
	values := make([]string, len(standardMetricHeaders))
	for i, header := range standardMetricHeaders {
		values[i] = "-"
		for _, m := range metrics {
			if m.Name != header || math.IsNaN(m.Value) {
				continue
			}
			switch header {
			case "Line coverage", "Branch coverage":
				v := m.Value
				values[i] = utils.FormatPercentage(&v, decimals)
			case "CrapScore":
				values[i] = strconv.FormatFloat(m.Value, 'f', 2, 64)
			default:
				values[i] = strconv.FormatFloat(m.Value, 'f', -1, 64)
			}
		}
	}
	return values
}

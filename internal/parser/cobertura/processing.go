package cobertura

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser"
	"github.com/IgorBayerl/covreport/internal/utils"
)

var (
	// "50% (1/2)" style condition coverage.
	conditionCoverageRegex = regexp.MustCompile(`\((?P<NumberOfCoveredBranches>\d+)/(?P<NumberOfTotalBranches>\d+)\)$`)

	lambdaMethodNameRegex = regexp.MustCompile(`<.+>.+__`)

	compilerGeneratedMethodNameRegex = regexp.MustCompile(`(?P<ClassName>.+)(?:/|\.)<(?P<CompilerGeneratedName>.+)>.+__.+MoveNext\(\)$`)

	localFunctionMethodNameRegex = regexp.MustCompile(`(?:.*<(?P<ParentMethodName>[^>]+)>g__)?(?P<NestedMethodName>[^|]+)\|`)

	genericClassRegex = regexp.MustCompile("^(?P<Name>.+)`(?P<Number>\\d+)$")

	nestedTypeSeparatorRegex = regexp.MustCompile(`[+/]`)
)

// processingOrchestrator holds dependencies and state for a single parsing operation.
type processingOrchestrator struct {
	fileReader       FileReader
	config           parser.ParserConfig
	sourceDirs       []string
	totalLinesByFile map[string]int
}

func newProcessingOrchestrator(fileReader FileReader, config parser.ParserConfig, sourceDirs []string) *processingOrchestrator {
	return &processingOrchestrator{
		fileReader:       fileReader,
		config:           config,
		sourceDirs:       sourceDirs,
		totalLinesByFile: make(map[string]int),
	}
}

// processPackages maps every <package> onto an assembly. Packages sharing a name
// end up in the same assembly.
func (o *processingOrchestrator) processPackages(packages []packageXML) []*model.Assembly {
	var assemblies []*model.Assembly
	byName := make(map[string]*model.Assembly)

	for _, pkg := range packages {
		if !o.config.AssemblyFilters().IsElementIncludedInReport(pkg.Name) {
			continue
		}
		assembly, ok := byName[pkg.Name]
		if !ok {
			assembly = model.NewAssembly(pkg.Name)
			byName[pkg.Name] = assembly
			assemblies = append(assemblies, assembly)
		}
		o.processPackage(assembly, pkg)
	}

	for _, a := range assemblies {
		a.AggregateMetrics()
	}
	if assemblies == nil {
		return []*model.Assembly{}
	}
	return assemblies
}

func (o *processingOrchestrator) processPackage(assembly *model.Assembly, pkg packageXML) {
	names, groups := o.groupClassesByLogicalName(pkg.Classes.Class)
	for _, logicalName := range names {
		if o.isFilteredRawClassName(logicalName) || assembly.FindClass(logicalName) != nil {
			continue
		}
		if class := o.processClassGroup(assembly, logicalName, groups[logicalName]); class != nil {
			assembly.AddClass(class)
		}
	}
}

// processClassGroup processes all XML fragments for a single logical class.
func (o *processingOrchestrator) processClassGroup(assembly *model.Assembly, logicalName string, fragments []classXML) *model.Class {
	if !o.config.ClassFilters().IsElementIncludedInReport(logicalName) {
		return nil
	}

	class := model.NewClass(logicalName, o.formatDisplayName(logicalName), assembly)

	files, byFile := o.groupClassFragmentsByFile(fragments)
	for _, filePath := range files {
		codeFile, methods := o.processFileForClass(filePath, byFile[filePath])
		class.Files = append(class.Files, codeFile)
		class.Methods = append(class.Methods, methods...)
	}
	if len(class.Files) == 0 {
		return nil
	}

	class.AggregateMetrics()
	for _, m := range class.Methods {
		if !math.IsNaN(m.Complexity) {
			class.Metrics["Cyclomatic complexity"] += m.Complexity
		}
	}
	return class
}

// processFileForClass merges the fragments of one source file into a CodeFile.
func (o *processingOrchestrator) processFileForClass(filePath string, fragments []classXML) (*model.CodeFile, []model.Method) {
	resolvedPath, err := utils.FindFileInSourceDirs(filePath, o.sourceDirs, o.fileReader)
	if err != nil {
		slog.Warn("Source file not found, line content will be missing.", "file", filePath)
		resolvedPath = filePath
	}

	lineHits, branches := mergeLineAndBranchData(fragments)

	numbers := make([]int, 0, len(lineHits))
	for n := range lineHits {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	codeFile := &model.CodeFile{Path: resolvedPath}
	for _, n := range numbers {
		line := model.Line{Number: n, Hits: lineHits[n]}
		if details, ok := branches[n]; ok {
			line.IsBranchPoint = true
			line.Branch = details
			for _, b := range details {
				line.TotalBranches++
				if b.Visits > 0 {
					line.CoveredBranches++
				}
			}
		}
		line.LineVisitStatus = model.DetermineLineVisitStatus(line.Hits, line.IsBranchPoint, line.CoveredBranches, line.TotalBranches)

		codeFile.Lines = append(codeFile.Lines, line)
		codeFile.CoverableLines++
		if line.Hits > 0 {
			codeFile.CoveredLines++
		}
	}

	maxLine := 0
	if len(numbers) > 0 {
		maxLine = numbers[len(numbers)-1]
	}
	codeFile.TotalLines = o.totalLines(resolvedPath, maxLine)

	methods, elements := o.processMethodsForFile(fragments)
	codeFile.CodeElements = elements
	for _, m := range methods {
		codeFile.MethodMetrics = append(codeFile.MethodMetrics, m.MethodMetrics...)
	}
	codeFile.MethodMetrics = utils.DistinctBy(codeFile.MethodMetrics, func(mm model.MethodMetric) string {
		return fmt.Sprintf("%s_%d", mm.Name, mm.Line)
	})

	return codeFile, methods
}

func (o *processingOrchestrator) totalLines(path string, fallback int) int {
	if count, ok := o.totalLinesByFile[path]; ok {
		return count
	}
	count, err := o.fileReader.CountLines(path)
	if err != nil {
		count = fallback
	}
	o.totalLinesByFile[path] = count
	return count
}

// mergeLineAndBranchData combines class-level and method-level lines of all fragments.
// Hits of the same line are summed; branches are merged by identifier.
func mergeLineAndBranchData(fragments []classXML) (map[int]int, map[int][]model.BranchCoverageDetail) {
	lineHits := make(map[int]int)
	branches := make(map[int][]model.BranchCoverageDetail)

	for _, fragment := range fragments {
		// A line listed both under <methods> and <lines> of the same fragment counts once.
		seen := make(map[int]struct{})
		all := append([]lineXML{}, fragment.Lines.Line...)
		for _, m := range fragment.Methods.Method {
			all = append(all, m.Lines.Line...)
		}

		for _, l := range all {
			number, err := strconv.Atoi(l.Number)
			if err != nil || number <= 0 {
				continue
			}
			if _, dup := seen[number]; dup {
				continue
			}
			seen[number] = struct{}{}

			hits, err := strconv.Atoi(l.Hits)
			if err != nil || hits < 0 {
				hits = 0
			}
			lineHits[number] += hits

			if details := parseBranches(l, number, hits); len(details) > 0 {
				branches[number] = mergeBranches(branches[number], details)
			}
		}
	}
	return lineHits, branches
}

// parseBranches reads the branch details of a line from condition-coverage,
// falling back to <conditions> and finally to a single synthetic branch.
func parseBranches(l lineXML, number, hits int) []model.BranchCoverageDetail {
	if !strings.EqualFold(l.Branch, "true") {
		return nil
	}

	if match := conditionCoverageRegex.FindStringSubmatch(l.ConditionCoverage); match != nil {
		covered, errC := strconv.Atoi(findNamedGroup(conditionCoverageRegex, match, "NumberOfCoveredBranches"))
		total, errT := strconv.Atoi(findNamedGroup(conditionCoverageRegex, match, "NumberOfTotalBranches"))
		if errC == nil && errT == nil && total > 0 {
			details := make([]model.BranchCoverageDetail, 0, total)
			for i := 0; i < total; i++ {
				visits := 0
				if i < covered {
					visits = 1
				}
				details = append(details, model.BranchCoverageDetail{
					Identifier: fmt.Sprintf("%d_%d", number, i),
					Visits:     visits,
				})
			}
			return details
		}
	}

	if len(l.Conditions.Condition) > 0 {
		details := make([]model.BranchCoverageDetail, 0, len(l.Conditions.Condition))
		for i, c := range l.Conditions.Condition {
			visits := 0
			if strings.HasPrefix(strings.TrimSpace(c.Coverage), "100") {
				visits = 1
			}
			id := c.Number
			if id == "" {
				id = strconv.Itoa(i)
			}
			details = append(details, model.BranchCoverageDetail{
				Identifier: fmt.Sprintf("%d_%s", number, id),
				Visits:     visits,
			})
		}
		return details
	}

	visits := 0
	if hits > 0 {
		visits = 1
	}
	return []model.BranchCoverageDetail{{Identifier: fmt.Sprintf("%d_0", number), Visits: visits}}
}

func mergeBranches(existing, incoming []model.BranchCoverageDetail) []model.BranchCoverageDetail {
	for _, b := range incoming {
		found := false
		for i := range existing {
			if existing[i].Identifier == b.Identifier {
				existing[i].Visits += b.Visits
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, b)
		}
	}
	return existing
}

// processMethodsForFile extracts all methods of the fragments, sorted by line.
func (o *processingOrchestrator) processMethodsForFile(fragments []classXML) ([]model.Method, []model.CodeElement) {
	var methods []model.Method
	for _, fragment := range fragments {
		for _, m := range fragment.Methods.Method {
			method, ok := o.processMethodXML(m, fragment.Name)
			if !ok {
				continue
			}
			methods = append(methods, method)
		}
	}

	methods = utils.DistinctBy(methods, func(m model.Method) string {
		return fmt.Sprintf("%s_%d", m.DisplayName, m.FirstLine)
	})
	sort.SliceStable(methods, func(i, j int) bool {
		if methods[i].FirstLine != methods[j].FirstLine {
			return methods[i].FirstLine < methods[j].FirstLine
		}
		return methods[i].DisplayName < methods[j].DisplayName
	})

	elements := make([]model.CodeElement, 0, len(methods))
	for i := range methods {
		elements = append(elements, codeElementFromMethod(&methods[i]))
	}
	return methods, elements
}

// processMethodXML converts a <method>. Lambdas are skipped.
func (o *processingOrchestrator) processMethodXML(m methodXML, className string) (model.Method, bool) {
	fullName := m.Name + m.Signature
	displayName := o.extractMethodName(fullName, className)
	if !o.config.Settings().RawMode && strings.Contains(displayName, "__") && lambdaMethodNameRegex.MatchString(displayName) {
		return model.Method{}, false
	}

	method := model.Method{
		Name:        m.Name,
		Signature:   m.Signature,
		DisplayName: displayName,
		Complexity:  math.NaN(),
	}
	if c, err := strconv.ParseFloat(strings.TrimSpace(m.Complexity), 64); err == nil {
		method.Complexity = c
	}

	first, last := math.MaxInt, 0
	var linesCovered, linesValid, branchesCovered, branchesValid int
	for _, l := range m.Lines.Line {
		number, err := strconv.Atoi(l.Number)
		if err != nil || number <= 0 {
			continue
		}
		first = min(first, number)
		last = max(last, number)

		hits, _ := strconv.Atoi(l.Hits)
		linesValid++
		if hits > 0 {
			linesCovered++
		}
		for _, b := range parseBranches(l, number, hits) {
			branchesValid++
			if b.Visits > 0 {
				branchesCovered++
			}
		}
	}
	if linesValid == 0 {
		first = 0
	}
	method.FirstLine, method.LastLine = first, last

	if linesValid > 0 {
		method.LineRate = float64(linesCovered) / float64(linesValid)
	}
	branchRate := 1.0
	if branchesValid > 0 {
		branchRate = float64(branchesCovered) / float64(branchesValid)
	}
	method.BranchRate = &branchRate

	method.MethodMetrics = method.StandardMetrics(utils.GetShortMethodName(method.DisplayName))
	return method, true
}

func codeElementFromMethod(method *model.Method) model.CodeElement {
	elementType := model.MethodElementType
	name := utils.GetShortMethodName(method.DisplayName)
	if strings.HasPrefix(method.DisplayName, "get_") || strings.HasPrefix(method.DisplayName, "set_") {
		elementType = model.PropertyElementType
		name = method.DisplayName
	}

	var quota *float64
	if method.LastLine > 0 {
		q := method.LineRate * 100
		quota = &q
	}

	return model.CodeElement{
		Name:          name,
		FullName:      method.DisplayName,
		Type:          elementType,
		FirstLine:     method.FirstLine,
		LastLine:      method.LastLine,
		CoverageQuota: quota,
	}
}

func (o *processingOrchestrator) extractMethodName(fullName, className string) string {
	if o.config.Settings().RawMode {
		return fullName
	}

	combined := className + fullName
	if strings.Contains(fullName, "|") && (strings.Contains(className, ">g__") || strings.Contains(fullName, ">g__")) {
		if match := localFunctionMethodNameRegex.FindStringSubmatch(combined); match != nil {
			if nested := findNamedGroup(localFunctionMethodNameRegex, match, "NestedMethodName"); nested != "" {
				return nested + "()"
			}
		}
	}
	if strings.HasSuffix(fullName, "MoveNext()") {
		if match := compilerGeneratedMethodNameRegex.FindStringSubmatch(combined); match != nil {
			if name := findNamedGroup(compilerGeneratedMethodNameRegex, match, "CompilerGeneratedName"); name != "" {
				return name + "()"
			}
		}
	}
	return fullName
}

// formatDisplayName turns "Ns.Outer/Inner`2" into "Ns.Outer.Inner<T1, T2>".
func (o *processingOrchestrator) formatDisplayName(rawName string) string {
	if o.config.Settings().RawMode {
		return rawName
	}
	name := nestedTypeSeparatorRegex.ReplaceAllString(rawName, ".")
	match := genericClassRegex.FindStringSubmatch(name)
	if match == nil {
		return name
	}

	base := findNamedGroup(genericClassRegex, match, "Name")
	argCount, _ := strconv.Atoi(findNamedGroup(genericClassRegex, match, "Number"))
	if argCount <= 0 {
		return base
	}

	args := make([]string, argCount)
	for i := range args {
		if argCount == 1 {
			args[i] = "T"
		} else {
			args[i] = "T" + strconv.Itoa(i+1)
		}
	}
	return base + "<" + strings.Join(args, ", ") + ">"
}

// logicalClassName folds nested and compiler generated types into their outer class.
func (o *processingOrchestrator) logicalClassName(raw string) string {
	if o.config.Settings().RawMode {
		return raw
	}
	if i := strings.IndexAny(raw, "/$+"); i > 0 {
		return raw[:i]
	}
	return raw
}

func (o *processingOrchestrator) isFilteredRawClassName(name string) bool {
	if o.config.Settings().RawMode {
		return false
	}
	return strings.HasPrefix(name, "<>c") ||
		strings.Contains(name, ">d__") ||
		strings.Contains(name, ">e__") ||
		(strings.Contains(name, "|") && strings.Contains(name, ">g__"))
}

// groupClassesByLogicalName groups fragments, keeping first-seen order of the names.
func (o *processingOrchestrator) groupClassesByLogicalName(classes []classXML) ([]string, map[string][]classXML) {
	var order []string
	grouped := make(map[string][]classXML)
	for _, c := range classes {
		name := o.logicalClassName(c.Name)
		if _, ok := grouped[name]; !ok {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], c)
	}
	return order, grouped
}

func (o *processingOrchestrator) groupClassFragmentsByFile(classes []classXML) ([]string, map[string][]classXML) {
	var order []string
	grouped := make(map[string][]classXML)
	for _, c := range classes {
		if c.Filename == "" || !o.config.FileFilters().IsElementIncludedInReport(c.Filename) {
			continue
		}
		if _, ok := grouped[c.Filename]; !ok {
			order = append(order, c.Filename)
		}
		grouped[c.Filename] = append(grouped[c.Filename], c)
	}
	return order, grouped
}

// findNamedGroup safely retrieves a captured group's value from a regex match slice.
func findNamedGroup(re *regexp.Regexp, match []string, groupName string) string {
	for i, name := range re.SubexpNames() {
		if i > 0 && i < len(match) && name == groupName {
			return match[i]
		}
	}
	return ""
}

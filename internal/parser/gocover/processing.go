package gocover

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser"
	"github.com/IgorBayerl/covreport/internal/utils"
	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/cover"
)

// processingOrchestrator holds dependencies and state for a single parsing operation.
type processingOrchestrator struct {
	fileReader   FileReader
	config       parser.ParserConfig
	assemblyName string
	modulePath   string
}

// parsedFunc is a function declaration found in a source file.
type parsedFunc struct {
	DisplayName string
	FuncName    string
	StartLine   int
	EndLine     int
	Complexity  int
}

type lineInfo struct {
	hits          int
	isLastInBlock bool
}

func newProcessingOrchestrator(fileReader FileReader, config parser.ParserConfig) *processingOrchestrator {
	return &processingOrchestrator{
		fileReader: fileReader,
		config:     config,
	}
}

// processProfiles turns the profiles into one assembly (the Go module) with one
// class per package.
func (o *processingOrchestrator) processProfiles(profiles []*cover.Profile) []*model.Assembly {
	if len(profiles) == 0 {
		return []*model.Assembly{}
	}

	o.resolveAssemblyName(profiles[0].FileName)
	if !o.config.AssemblyFilters().IsElementIncludedInReport(o.assemblyName) {
		return []*model.Assembly{}
	}

	assembly := model.NewAssembly(o.assemblyName)
	byPackage := o.groupProfilesByPackage(profiles)

	packages := make([]string, 0, len(byPackage))
	for pkg := range byPackage {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		if class := o.processPackage(assembly, pkg, byPackage[pkg]); class != nil {
			assembly.AddClass(class)
		}
	}

	assembly.AggregateMetrics()
	return []*model.Assembly{assembly}
}

func (o *processingOrchestrator) resolveAssemblyName(firstFile string) {
	startPath := firstFile
	if resolved, err := utils.FindFileInSourceDirs(firstFile, o.config.SourceDirectories(), o.fileReader); err == nil {
		startPath = resolved
	}

	modName, err := o.findModuleNameFromGoMod(startPath)
	if err != nil {
		slog.Warn("Could not discover Go module name, falling back to default.", "error", err)
		o.assemblyName = o.config.Settings().DefaultAssemblyName
		return
	}
	slog.Debug("Discovered Go module name for assembly", "name", modName)
	o.assemblyName = modName
	o.modulePath = modName
}

func (o *processingOrchestrator) findModuleNameFromGoMod(startPath string) (string, error) {
	dir := path.Dir(toSlash(startPath))
	var goModPath string
	for {
		candidate := path.Join(dir, "go.mod")
		if _, err := o.fileReader.Stat(candidate); err == nil {
			goModPath = candidate
			break
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in parent directories of %s", startPath)
		}
		dir = parent
	}

	lines, err := o.fileReader.ReadFile(goModPath)
	if err != nil {
		return "", fmt.Errorf("could not read go.mod at %s: %w", goModPath, err)
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`), nil
		}
	}
	return "", fmt.Errorf("'module' directive not found in %s", goModPath)
}

// groupProfilesByPackage groups the file profiles by import path of their package.
func (o *processingOrchestrator) groupProfilesByPackage(profiles []*cover.Profile) map[string][]*cover.Profile {
	byPackage := make(map[string][]*cover.Profile)
	for _, p := range profiles {
		if !o.config.FileFilters().IsElementIncludedInReport(p.FileName) {
			continue
		}
		pkg := path.Dir(p.FileName)
		if pkg == "." {
			pkg = o.assemblyName
		}
		byPackage[pkg] = append(byPackage[pkg], p)
	}
	return byPackage
}

func (o *processingOrchestrator) processPackage(assembly *model.Assembly, pkg string, profiles []*cover.Profile) *model.Class {
	if !o.config.ClassFilters().IsElementIncludedInReport(pkg) {
		return nil
	}

	displayName := pkg
	if o.modulePath != "" {
		if pkg == o.modulePath {
			displayName = "(root)"
		} else if strings.HasPrefix(pkg, o.modulePath+"/") {
			displayName = strings.TrimPrefix(pkg, o.modulePath+"/")
		}
	}

	class := model.NewClass(pkg, displayName, assembly)
	for _, p := range profiles {
		codeFile, methods := o.processFile(p)
		class.Files = append(class.Files, codeFile)
		class.Methods = append(class.Methods, methods...)
	}
	if len(class.Files) == 0 {
		return nil
	}

	class.AggregateMetrics()
	for _, m := range class.Methods {
		class.Metrics["Cyclomatic complexity"] += m.Complexity
	}
	return class
}

func (o *processingOrchestrator) processFile(profile *cover.Profile) (*model.CodeFile, []model.Method) {
	resolvedPath := o.resolveSourcePath(profile.FileName)

	sourceLines, err := o.fileReader.ReadFile(resolvedPath)
	if err != nil {
		slog.Warn("Source file not found, line content will be missing.", "file", profile.FileName, "error", err)
	}
	totalLines, err := o.fileReader.CountLines(resolvedPath)
	if err != nil {
		totalLines = len(sourceLines)
	}

	lineData := collectLineData(profile.Blocks)

	numbers := make([]int, 0, len(lineData))
	for n := range lineData {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	codeFile := &model.CodeFile{Path: resolvedPath, TotalLines: totalLines}
	coverable := make(map[int]int, len(numbers))
	for _, n := range numbers {
		data := lineData[n]
		if data.isLastInBlock && n <= len(sourceLines) && strings.TrimSpace(sourceLines[n-1]) == "}" {
			continue
		}
		codeFile.Lines = append(codeFile.Lines, model.Line{
			Number:          n,
			Hits:            data.hits,
			LineVisitStatus: model.DetermineLineVisitStatus(data.hits, false, 0, 0),
		})
		coverable[n] = data.hits
		codeFile.CoverableLines++
		if data.hits > 0 {
			codeFile.CoveredLines++
		}
	}

	if len(sourceLines) == 0 {
		return codeFile, nil
	}

	funcs, err := parseGoSourceForFunctions(resolvedPath, sourceLines)
	if err != nil {
		slog.Warn("Failed to parse Go source for functions, method metrics will be unavailable.", "file", resolvedPath, "error", err)
	}

	var methods []model.Method
	for _, fn := range funcs {
		var covered, valid int
		for n := fn.StartLine; n <= fn.EndLine; n++ {
			if hits, ok := coverable[n]; ok {
				valid++
				if hits > 0 {
					covered++
				}
			}
		}
		if valid == 0 {
			continue
		}

		method := model.Method{
			Name:        fn.FuncName,
			DisplayName: fn.DisplayName,
			FirstLine:   fn.StartLine,
			LastLine:    fn.EndLine,
			LineRate:    float64(covered) / float64(valid),
			Complexity:  float64(fn.Complexity),
		}
		shortName := utils.GetShortMethodName(method.DisplayName)
		method.MethodMetrics = method.StandardMetrics(shortName)
		methods = append(methods, method)

		quota := method.LineRate * 100
		codeFile.CodeElements = append(codeFile.CodeElements, model.CodeElement{
			Name:          shortName,
			FullName:      method.DisplayName,
			Type:          model.MethodElementType,
			FirstLine:     method.FirstLine,
			LastLine:      method.LastLine,
			CoverageQuota: &quota,
		})
		codeFile.MethodMetrics = append(codeFile.MethodMetrics, method.MethodMetrics...)
	}
	return codeFile, methods
}

// resolveSourcePath maps an import-path style profile entry onto a file on disk.
func (o *processingOrchestrator) resolveSourcePath(fileName string) string {
	candidates := []string{fileName}
	if o.modulePath != "" && strings.HasPrefix(fileName, o.modulePath+"/") {
		candidates = append([]string{strings.TrimPrefix(fileName, o.modulePath+"/")}, candidates...)
	}
	for _, c := range candidates {
		if resolved, err := utils.FindFileInSourceDirs(c, o.config.SourceDirectories(), o.fileReader); err == nil {
			return resolved
		}
	}
	return fileName
}

// collectLineData spreads block counts over their lines. A line covered by
// several blocks keeps the highest count.
func collectLineData(blocks []cover.ProfileBlock) map[int]lineInfo {
	lineData := make(map[int]lineInfo)
	for _, b := range blocks {
		if b.NumStmt == 0 {
			continue
		}
		for n := b.StartLine; n <= b.EndLine; n++ {
			info := lineData[n]
			if b.Count > info.hits {
				info.hits = b.Count
			}
			if n == b.EndLine {
				info.isLastInBlock = true
			}
			lineData[n] = info
		}
	}
	return lineData
}

func parseGoSourceForFunctions(filePath string, sourceLines []string) ([]parsedFunc, error) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, filePath, strings.Join(sourceLines, "\n"), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source: %w", err)
	}

	var funcs []parsedFunc
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		displayName := fn.Name.Name
		if recv := receiverTypeName(fn); recv != "" {
			displayName = fmt.Sprintf("(%s).%s", recv, fn.Name.Name)
		}
		funcs = append(funcs, parsedFunc{
			DisplayName: displayName,
			FuncName:    fn.Name.Name,
			StartLine:   fset.Position(fn.Pos()).Line,
			EndLine:     fset.Position(fn.End()).Line,
			Complexity:  gocyclo.Complexity(fn),
		})
	}
	return funcs, nil
}

func receiverTypeName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	var sb strings.Builder
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch t := e.(type) {
		case *ast.StarExpr:
			sb.WriteString("*")
			walk(t.X)
		case *ast.Ident:
			sb.WriteString(t.Name)
		case *ast.IndexExpr:
			walk(t.X)
		case *ast.IndexListExpr:
			walk(t.X)
		}
	}
	walk(fn.Recv.List[0].Type)
	return sb.String()
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

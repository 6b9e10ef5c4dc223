package htmlreport

import (
	"fmt"
	"strings"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/utils"
)

const maxFilenameLengthBase = 95

// Methods at or above these values are listed as risk hotspots.
const (
	riskHotspotComplexityThreshold = 15
	riskHotspotCrapScoreThreshold  = 15
)

func countTotalClasses(assemblies []*model.Assembly) int {
	count := 0
	for _, asm := range assemblies {
		count += len(asm.Classes)
	}
	return count
}

func countUniqueFiles(assemblies []*model.Assembly) int {
	var allFiles []*model.CodeFile
	for _, asm := range assemblies {
		for _, cls := range asm.Classes {
			allFiles = append(allFiles, cls.Files...)
		}
	}
	return len(utils.DistinctBy(allFiles, func(file *model.CodeFile) string { return file.Path }))
}

func lineVisitStatusToString(status model.LineVisitStatus) string {
	switch status {
	case model.Covered:
		return "green"
	case model.NotCovered:
		return "red"
	case model.PartiallyCovered:
		return "orange"
	default:
		return "gray"
	}
}

// classKey identifies a class across the per-class and summary calls.
func classKey(assemblyName, className string) string {
	return assemblyName + "\x00" + className
}

// generateUniqueFilename creates a sanitized and unique HTML filename for a class.
// The existingFilenames map is modified by this function.
func generateUniqueFilename(
	assemblyShortName string,
	className string,
	existingFilenames map[string]struct{},
) string {
	namePart := className
	if lastDot := strings.LastIndex(className, "."); lastDot != -1 {
		namePart = className[lastDot+1:]
	}

	processedClassName := namePart
	if strings.HasSuffix(strings.ToLower(className), ".js") {
		// "app.js" keeps its base name instead of ending up as "js".
		trimmed := className[:len(className)-3]
		processedClassName = trimmed[strings.LastIndex(trimmed, ".")+1:]
	}

	for _, sep := range []string{"+", "/", "::"} {
		if strings.Contains(processedClassName, sep) {
			parts := strings.Split(processedClassName, sep)
			processedClassName = parts[len(parts)-1]
		}
	}

	sanitizedName := strings.Trim(utils.ReplaceInvalidPathChars(assemblyShortName+processedClassName), "_")
	if sanitizedName == "" {
		sanitizedName = "class"
	}

	if len(sanitizedName) > maxFilenameLengthBase {
		sanitizedName = sanitizedName[:50] + sanitizedName[len(sanitizedName)-(maxFilenameLengthBase-50):]
	}

	fileName := sanitizedName + ".html"
	counter := 1
	normalized := strings.ToLower(fileName)

	_, exists := existingFilenames[normalized]
	for exists {
		counter++
		fileName = fmt.Sprintf("%s%d.html", sanitizedName, counter)
		normalized = strings.ToLower(fileName)
		_, exists = existingFilenames[normalized]
	}

	existingFilenames[normalized] = struct{}{}
	return fileName
}

// formatVisits renders the visit count column, blank for lines that are not coverable.
func formatVisits(line *model.LineAnalysis) string {
	if line.LineVisitStatus == model.NotCoverable || line.LineVisits < 0 {
		return ""
	}
	return utils.FormatNumber(line.LineVisits)
}

func formatBranches(line *model.LineAnalysis) string {
	if line.TotalBranches == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", line.CoveredBranches, line.TotalBranches)
}

// coverageBar converts a quota into the 0..100 width of the summary bar.
func coverageBar(quota *float64) int {
	if quota == nil {
		return 0
	}
	switch {
	case *quota < 0:
		return 0
	case *quota > 100:
		return 100
	default:
		return int(*quota)
	}
}

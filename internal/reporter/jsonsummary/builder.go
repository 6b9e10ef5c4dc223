// Package jsonsummary renders Summary.json for consumption by CI tooling.
package jsonsummary

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/reporting"
)

const summaryFileName = "Summary.json"

type summaryDocument struct {
	Summary    summaryJSON    `json:"summary"`
	Assemblies []assemblyJSON `json:"coverage"`
}

type summaryJSON struct {
	GeneratedOn         string   `json:"generatedon"`
	Title               string   `json:"title"`
	Tag                 string   `json:"tag,omitempty"`
	Parser              string   `json:"parser"`
	Assemblies          int      `json:"assemblies"`
	Classes             int      `json:"classes"`
	Files               int      `json:"files"`
	CoveredLines        int      `json:"coveredlines"`
	UncoveredLines      int      `json:"uncoveredlines"`
	CoverableLines      int      `json:"coverablelines"`
	TotalLines          int      `json:"totallines"`
	LineCoverage        *float64 `json:"linecoverage"`
	CoveredBranches     *int     `json:"coveredbranches"`
	TotalBranches       *int     `json:"totalbranches"`
	BranchCoverage      *float64 `json:"branchcoverage"`
	CoveredMethods      int      `json:"coveredmethods"`
	FullyCoveredMethods int      `json:"fullcoveredmethods"`
	TotalMethods        int      `json:"totalmethods"`
	MethodCoverage      *float64 `json:"methodcoverage"`
}

type assemblyJSON struct {
	Name            string      `json:"name"`
	Classes         int         `json:"classes"`
	CoveredLines    int         `json:"coveredlines"`
	CoverableLines  int         `json:"coverablelines"`
	TotalLines      int         `json:"totallines"`
	Coverage        *float64    `json:"coverage"`
	CoveredBranches *int        `json:"coveredbranches"`
	TotalBranches   *int        `json:"totalbranches"`
	BranchCoverage  *float64    `json:"branchcoverage"`
	CoveredMethods  int         `json:"coveredmethods"`
	TotalMethods    int         `json:"totalmethods"`
	MethodCoverage  *float64    `json:"methodcoverage"`
	ClassesInfo     []classJSON `json:"classesinassembly"`
}

type classJSON struct {
	Name                string   `json:"name"`
	CoveredLines        int      `json:"coveredlines"`
	CoverableLines      int      `json:"coverablelines"`
	TotalLines          int      `json:"totallines"`
	Coverage            *float64 `json:"coverage"`
	CoveredBranches     *int     `json:"coveredbranches"`
	TotalBranches       *int     `json:"totalbranches"`
	BranchCoverage      *float64 `json:"branchcoverage"`
	CoveredMethods      int      `json:"coveredmethods"`
	FullyCoveredMethods int      `json:"fullcoveredmethods"`
	TotalMethods        int      `json:"totalmethods"`
	MethodCoverage      *float64 `json:"methodcoverage"`
}

// JsonReportBuilder writes Summary.json. Quotas that cannot be computed are null.
type JsonReportBuilder struct {
	OutputDir string

	reportContext reporting.IReportContext
	now           func() time.Time
}

// NewJsonReportBuilder creates a new JsonReportBuilder writing into outputDir.
func NewJsonReportBuilder(outputDir string, reportContext reporting.IReportContext) *JsonReportBuilder {
	return &JsonReportBuilder{
		OutputDir:     outputDir,
		reportContext: reportContext,
		now:           time.Now,
	}
}

func (b *JsonReportBuilder) ReportType() string {
	return "JsonSummary"
}

func (b *JsonReportBuilder) CreateClassReport(*model.Class, []*model.FileAnalysis) error {
	return nil
}

func (b *JsonReportBuilder) CreateSummaryReport(summary *model.SummaryResult) error {
	doc := b.buildDocument(summary)
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", b.OutputDir, err)
	}
	target := filepath.Join(b.OutputDir, summaryFileName)
	if err := os.WriteFile(target, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

func (b *JsonReportBuilder) buildDocument(summary *model.SummaryResult) summaryDocument {
	decimals := b.reportContext.Settings().MaximumDecimalPlacesForCoverageQuotas
	cfg := b.reportContext.ReportConfiguration()

	doc := summaryDocument{
		Summary: summaryJSON{
			GeneratedOn:         b.now().UTC().Format(time.RFC3339),
			Title:               cfg.Title(),
			Tag:                 cfg.Tag(),
			Parser:              summary.ParserName,
			Assemblies:          len(summary.Assemblies),
			Classes:             summary.TotalClasses,
			Files:               summary.TotalFiles,
			CoveredLines:        summary.LinesCovered,
			UncoveredLines:      summary.LinesValid - summary.LinesCovered,
			CoverableLines:      summary.LinesValid,
			TotalLines:          summary.TotalLines,
			LineCoverage:        round(summary.LineCoverageQuota(), decimals),
			CoveredBranches:     summary.BranchesCovered,
			TotalBranches:       summary.BranchesValid,
			BranchCoverage:      round(summary.BranchCoverageQuota(), decimals),
			CoveredMethods:      summary.CoveredMethods,
			FullyCoveredMethods: summary.FullyCoveredMethods,
			TotalMethods:        summary.TotalMethods,
			MethodCoverage:      round(summary.MethodCoverageQuota(), decimals),
		},
		Assemblies: make([]assemblyJSON, 0, len(summary.Assemblies)),
	}

	for _, asm := range summary.Assemblies {
		a := assemblyJSON{
			Name:            asm.Name,
			Classes:         len(asm.Classes),
			CoveredLines:    asm.LinesCovered,
			CoverableLines:  asm.LinesValid,
			TotalLines:      asm.TotalLines,
			Coverage:        round(quota(asm.LinesCovered, asm.LinesValid), decimals),
			CoveredBranches: asm.BranchesCovered,
			TotalBranches:   asm.BranchesValid,
			ClassesInfo:     make([]classJSON, 0, len(asm.Classes)),
		}
		if asm.BranchesCovered != nil && asm.BranchesValid != nil {
			a.BranchCoverage = round(quota(*asm.BranchesCovered, *asm.BranchesValid), decimals)
		}
		for _, c := range asm.Classes {
			a.CoveredMethods += c.CoveredMethods
			a.TotalMethods += c.TotalMethods
			a.ClassesInfo = append(a.ClassesInfo, classJSON{
				Name:                c.DisplayName,
				CoveredLines:        c.LinesCovered,
				CoverableLines:      c.LinesValid,
				TotalLines:          c.TotalLines,
				Coverage:            round(c.LineCoverageQuota(), decimals),
				CoveredBranches:     c.BranchesCovered,
				TotalBranches:       c.BranchesValid,
				BranchCoverage:      round(c.BranchCoverageQuota(), decimals),
				CoveredMethods:      c.CoveredMethods,
				FullyCoveredMethods: c.FullyCoveredMethods,
				TotalMethods:        c.TotalMethods,
				MethodCoverage:      round(c.MethodCoverageQuota(), decimals),
			})
		}
		a.MethodCoverage = round(quota(a.CoveredMethods, a.TotalMethods), decimals)
		doc.Assemblies = append(doc.Assemblies, a)
	}
	return doc
}

func quota(covered, total int) *float64 {
	if total <= 0 {
		return nil
	}
	q := float64(covered) / float64(total) * 100
	return &q
}

// round limits q to the configured decimal places. nil stays nil so it encodes as null.
func round(q *float64, decimals int) *float64 {
	if q == nil {
		return nil
	}
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	r := math.Round(*q*p) / p
	return &r
}

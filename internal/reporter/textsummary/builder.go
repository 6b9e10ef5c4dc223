// Package textsummary renders Summary.txt, a plain text overview of a run.
package textsummary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/reporting"
	"github.com/IgorBayerl/covreport/internal/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

const summaryFileName = "Summary.txt"

// TextReportBuilder writes Summary.txt. It produces no per-class output.
type TextReportBuilder struct {
	OutputDir string

	reportContext reporting.IReportContext
	now           func() time.Time
}

// NewTextReportBuilder creates a new TextReportBuilder writing into outputDir.
func NewTextReportBuilder(outputDir string, reportContext reporting.IReportContext) *TextReportBuilder {
	return &TextReportBuilder{
		OutputDir:     outputDir,
		reportContext: reportContext,
		now:           time.Now,
	}
}

func (b *TextReportBuilder) ReportType() string {
	return "TextSummary"
}

// CreateClassReport is a no-op, the text summary has no class pages.
func (b *TextReportBuilder) CreateClassReport(*model.Class, []*model.FileAnalysis) error {
	return nil
}

func (b *TextReportBuilder) CreateSummaryReport(summary *model.SummaryResult) error {
	var buf bytes.Buffer
	b.writeHeader(&buf, summary)
	buf.WriteString("\n")
	if err := b.writeCoverageTable(&buf, summary); err != nil {
		return fmt.Errorf("failed to render summary table: %w", err)
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", b.OutputDir, err)
	}
	target := filepath.Join(b.OutputDir, summaryFileName)
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

func (b *TextReportBuilder) writeHeader(w io.Writer, summary *model.SummaryResult) {
	decimals := b.reportContext.Settings().MaximumDecimalPlacesForCoverageQuotas
	cfg := b.reportContext.ReportConfiguration()

	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Title:                  %s\n", cfg.Title())
	fmt.Fprintf(w, "  Generated on:           %s\n", b.now().Format("2006-01-02 15:04:05"))
	if tag := cfg.Tag(); tag != "" {
		fmt.Fprintf(w, "  Tag:                    %s\n", tag)
	}
	fmt.Fprintf(w, "  Parser:                 %s\n", summary.ParserName)
	fmt.Fprintf(w, "  Assemblies:             %s\n", utils.FormatNumber(len(summary.Assemblies)))
	fmt.Fprintf(w, "  Classes:                %s\n", utils.FormatNumber(summary.TotalClasses))
	fmt.Fprintf(w, "  Files:                  %s\n", utils.FormatNumber(summary.TotalFiles))
	fmt.Fprintf(w, "  Line coverage:          %s\n", utils.FormatPercentage(summary.LineCoverageQuota(), decimals))
	fmt.Fprintf(w, "  Covered lines:          %s\n", utils.FormatNumber(summary.LinesCovered))
	fmt.Fprintf(w, "  Uncovered lines:        %s\n", utils.FormatNumber(summary.LinesValid-summary.LinesCovered))
	fmt.Fprintf(w, "  Coverable lines:        %s\n", utils.FormatNumber(summary.LinesValid))
	fmt.Fprintf(w, "  Total lines:            %s\n", utils.FormatNumber(summary.TotalLines))
	if summary.BranchesValid != nil {
		fmt.Fprintf(w, "  Branch coverage:        %s (%s)\n",
			utils.FormatPercentage(summary.BranchCoverageQuota(), decimals),
			utils.FormatRatio(*summary.BranchesCovered, *summary.BranchesValid))
		fmt.Fprintf(w, "  Covered branches:       %s\n", utils.FormatNumber(*summary.BranchesCovered))
		fmt.Fprintf(w, "  Total branches:         %s\n", utils.FormatNumber(*summary.BranchesValid))
	}
	fmt.Fprintf(w, "  Method coverage:        %s (%s)\n",
		utils.FormatPercentage(summary.MethodCoverageQuota(), decimals),
		utils.FormatRatio(summary.CoveredMethods, summary.TotalMethods))
	fmt.Fprintf(w, "  Full method coverage:   %s\n", utils.FormatRatio(summary.FullyCoveredMethods, summary.TotalMethods))
}

func (b *TextReportBuilder) writeCoverageTable(w io.Writer, summary *model.SummaryResult) error {
	decimals := b.reportContext.Settings().MaximumDecimalPlacesForCoverageQuotas
	withBranches := summary.BranchesValid != nil

	headers := []string{"Name", "Line", "Covered", "Coverable"}
	if withBranches {
		headers = append(headers, "Branch")
	}
	headers = append(headers, "Method")

	table := createSummaryTable(headers, w)
	for _, asm := range summary.Assemblies {
		var coveredMethods, totalMethods int
		for _, class := range asm.Classes {
			coveredMethods += class.CoveredMethods
			totalMethods += class.TotalMethods
		}
		row := []string{
			asm.Name,
			utils.FormatPercentage(quota(asm.LinesCovered, asm.LinesValid), decimals),
			utils.FormatNumber(asm.LinesCovered),
			utils.FormatNumber(asm.LinesValid),
		}
		if withBranches {
			row = append(row, utils.FormatPercentage(branchQuota(asm.BranchesCovered, asm.BranchesValid), decimals))
		}
		row = append(row, utils.FormatPercentage(quota(coveredMethods, totalMethods), decimals))
		if err := table.Append(row); err != nil {
			return err
		}

		for _, class := range asm.Classes {
			row := []string{
				"  " + class.DisplayName,
				utils.FormatPercentage(class.LineCoverageQuota(), decimals),
				utils.FormatNumber(class.LinesCovered),
				utils.FormatNumber(class.LinesValid),
			}
			if withBranches {
				row = append(row, utils.FormatPercentage(class.BranchCoverageQuota(), decimals))
			}
			row = append(row, utils.FormatPercentage(class.MethodCoverageQuota(), decimals))
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

func createSummaryTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func quota(covered, total int) *float64 {
	if total <= 0 {
		return nil
	}
	q := float64(covered) / float64(total) * 100
	return &q
}

func branchQuota(covered, total *int) *float64 {
	if covered == nil || total == nil {
		return nil
	}
	return quota(*covered, *total)
}

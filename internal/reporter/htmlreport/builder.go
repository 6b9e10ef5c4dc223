package htmlreport

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/IgorBayerl/covreport/internal/reporting"
)

// HtmlReportBuilder is responsible for generating HTML reports: one page per
// class and an index.html summary linking them.
type HtmlReportBuilder struct {
	OutputDir string

	reportContext reporting.IReportContext
	now           func() time.Time

	// existingFilenames holds the lower-cased names of pages already written.
	existingFilenames map[string]struct{}
	// classReportFilenames maps classKey to the page of a rendered class.
	classReportFilenames map[string]string
}

// NewHtmlReportBuilder creates a new HtmlReportBuilder writing into outputDir.
func NewHtmlReportBuilder(outputDir string, reportContext reporting.IReportContext) *HtmlReportBuilder {
	return &HtmlReportBuilder{
		OutputDir:            outputDir,
		reportContext:        reportContext,
		now:                  time.Now,
		existingFilenames:    make(map[string]struct{}),
		classReportFilenames: make(map[string]string),
	}
}

// ReportType returns the type of report this builder creates.
func (b *HtmlReportBuilder) ReportType() string {
	return "Html"
}

func (b *HtmlReportBuilder) decimalPlaces() int {
	return b.reportContext.Settings().MaximumDecimalPlacesForCoverageQuotas
}

func (b *HtmlReportBuilder) title() string {
	return b.reportContext.ReportConfiguration().Title()
}

func (b *HtmlReportBuilder) tag() string {
	return b.reportContext.ReportConfiguration().Tag()
}

func (b *HtmlReportBuilder) generatedAt() string {
	return b.now().Format("2006-01-02 15:04:05")
}

// writePage renders tmpl into a buffer first so a failing template never leaves
// a truncated file behind.
func (b *HtmlReportBuilder) writePage(tmpl *template.Template, fileName, title string, data any) error {
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", b.OutputDir, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{Title: title, Style: template.CSS(styleSheet), Data: data}); err != nil {
		return fmt.Errorf("failed to render %s: %w", fileName, err)
	}

	target := filepath.Join(b.OutputDir, fileName)
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

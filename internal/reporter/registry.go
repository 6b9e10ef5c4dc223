// Package reporter maps configured report type names to report builders.
package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/IgorBayerl/covreport/internal/reporter/htmlreport"
	"github.com/IgorBayerl/covreport/internal/reporter/jsonsummary"
	"github.com/IgorBayerl/covreport/internal/reporter/textsummary"
	"github.com/IgorBayerl/covreport/internal/reporting"
)

type builderFactory func(outputDir string, ctx reporting.IReportContext) reporting.IReportBuilder

var builderFactories = map[string]builderFactory{
	"html": func(dir string, ctx reporting.IReportContext) reporting.IReportBuilder {
		return htmlreport.NewHtmlReportBuilder(dir, ctx)
	},
	"textsummary": func(dir string, ctx reporting.IReportContext) reporting.IReportBuilder {
		return textsummary.NewTextReportBuilder(dir, ctx)
	},
	"jsonsummary": func(dir string, ctx reporting.IReportContext) reporting.IReportBuilder {
		return jsonsummary.NewJsonReportBuilder(dir, ctx)
	},
}

// SupportedReportTypes lists the report type names NewReportBuilders accepts.
func SupportedReportTypes() []string {
	types := []string{
		htmlreport.NewHtmlReportBuilder("", nil).ReportType(),
		textsummary.NewTextReportBuilder("", nil).ReportType(),
		jsonsummary.NewJsonReportBuilder("", nil).ReportType(),
	}
	sort.Strings(types)
	return types
}

// NewReportBuilders creates one builder per requested type, writing into the
// configured target directory. Names match case-insensitively and duplicates
// are created once. An unknown name is an error.
func NewReportBuilders(reportTypes []string, ctx reporting.IReportContext) ([]reporting.IReportBuilder, error) {
	if ctx == nil {
		return nil, fmt.Errorf("report context is required")
	}
	outputDir := ctx.ReportConfiguration().TargetDirectory()

	seen := make(map[string]struct{}, len(reportTypes))
	builders := make([]reporting.IReportBuilder, 0, len(reportTypes))
	for _, rt := range reportTypes {
		key := strings.ToLower(strings.TrimSpace(rt))
		factory, ok := builderFactories[key]
		if !ok {
			return nil, fmt.Errorf("unknown report type %q (supported: %s)", rt, strings.Join(SupportedReportTypes(), ", "))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		builders = append(builders, factory(outputDir, ctx))
	}
	return builders, nil
}

package reporting

import "github.com/IgorBayerl/covreport/internal/model"

// IReportBuilder is a pluggable output backend.
//
// CreateClassReport is called once per included class, CreateSummaryReport once
// per run after every class was attempted. ReportType is used for diagnostics.
// Implementations are not required to be safe for concurrent use.
type IReportBuilder interface {
	ReportType() string
	CreateClassReport(class *model.Class, fileAnalyses []*model.FileAnalysis) error
	CreateSummaryReport(summary *model.SummaryResult) error
}

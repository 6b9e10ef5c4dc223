package htmlreport

// AssemblyViewModel is the data embedded as window.assemblies on the summary page.
type AssemblyViewModel struct {
	Name    string           `json:"name"`
	Classes []ClassViewModel `json:"classes"`
}

// ClassViewModel is one class of window.assemblies.
type ClassViewModel struct {
	Name                string                     `json:"name"`
	ReportPath          string                     `json:"rp"`
	CoveredLines        int                        `json:"cl"`
	UncoveredLines      int                        `json:"ucl"`
	CoverableLines      int                        `json:"cal"`
	TotalLines          int                        `json:"tl"`
	CoveredBranches     int                        `json:"cb"`
	TotalBranches       int                        `json:"tb"`
	CoveredMethods      int                        `json:"cm"`
	FullyCoveredMethods int                        `json:"fcm"`
	TotalMethods        int                        `json:"tm"`
	LineCoverageHistory []float64                  `json:"lch,omitempty"`
	HistoricCoverages   []HistoricCoverageViewModel `json:"hc"`
	Metrics             map[string]float64         `json:"metrics,omitempty"`
}

// HistoricCoverageViewModel is a single historic data point.
type HistoricCoverageViewModel struct {
	ExecutionTime       string  `json:"et"`
	Tag                 string  `json:"tag,omitempty"`
	CoveredLines        int     `json:"cl"`
	CoverableLines      int     `json:"cal"`
	TotalLines          int     `json:"tl"`
	LineCoverageQuota   float64 `json:"lcq"`
	CoveredBranches     int     `json:"cb"`
	TotalBranches       int     `json:"tb"`
	BranchCoverageQuota float64 `json:"bcq"`
}

// CardViewModel is a summary card with header/value rows.
type CardViewModel struct {
	Title string
	Rows  []CardRowViewModel
}

// CardRowViewModel is one row of a summary card.
type CardRowViewModel struct {
	Header string
	Text   string
}

// SummaryPageData holds all data for index.html.
type SummaryPageData struct {
	Title                   string
	Tag                     string
	ParserName              string
	GeneratedAt             string
	BranchCoverageAvailable bool
	Cards                   []CardViewModel
	Assemblies              []SummaryAssemblyRow
	RiskHotspots            []RiskHotspotViewModel
	AssembliesJSON          []AssemblyViewModel
}

// SummaryAssemblyRow is an assembly with its classes in the summary table.
type SummaryAssemblyRow struct {
	Name    string
	Summary SummaryCoverageRow
	Classes []SummaryClassRow
}

// SummaryClassRow is a class row in the summary table. ReportPath is empty when
// no page was rendered for the class.
type SummaryClassRow struct {
	Name       string
	ReportPath string
	SummaryCoverageRow
}

// SummaryCoverageRow holds the formatted coverage columns shared by assembly and class rows.
type SummaryCoverageRow struct {
	CoveredLines   string
	UncoveredLines string
	CoverableLines string
	TotalLines     string
	LineCoverage   string
	LineBar        int
	BranchCoverage string
	MethodCoverage string
}

// RiskHotspotViewModel is a method whose metrics exceed a threshold.
type RiskHotspotViewModel struct {
	Assembly   string
	Class      string
	ReportPath string
	Method     string
	Line       int
	Complexity string
	CrapScore  string
}

// ClassDetailData holds all data for a class page.
type ClassDetailData struct {
	Title       string
	Tag         string
	GeneratedAt string
	Class       ClassDetailViewModel
}

// ClassDetailViewModel describes a class page.
type ClassDetailViewModel struct {
	Name              string
	AssemblyName      string
	Cards             []CardViewModel
	HistoricCoverages []HistoricCoverageRow
	MetricHeaders     []string
	Metrics           []MethodMetricRow
	CodeElements      []CodeElementViewModel
	Files             []FileViewModel
}

// HistoricCoverageRow is a formatted historic snapshot.
type HistoricCoverageRow struct {
	ExecutionTime  string
	Tag            string
	LineCoverage   string
	BranchCoverage string
	CoveredLines   string
	CoverableLines string
}

// MethodMetricRow holds the formatted metrics of one method, in MetricHeaders order.
type MethodMetricRow struct {
	Name   string
	Anchor string
	Values []string
}

// CodeElementViewModel is an entry of the sidebar listing methods and properties.
type CodeElementViewModel struct {
	Name       string
	FullName   string
	Anchor     string
	Coverage   string
	IsProperty bool
}

// FileViewModel is one analysed source file on a class page.
type FileViewModel struct {
	Index int
	Path  string
	Error string
	Lines []LineViewModel
}

// LineViewModel is one rendered source line.
type LineViewModel struct {
	Number   int
	Anchor   string
	Visits   string
	Branches string
	Status   string
	Content  string
}

package reportconfig

import (
	"fmt"
	"strings"

	"github.com/IgorBayerl/covreport/internal/logging"
	"github.com/IgorBayerl/covreport/internal/utils"
	"github.com/spf13/viper"
)

// DefaultTitle is used when no title is configured.
const DefaultTitle = "Coverage Report"

// IReportConfiguration defines the configuration for report generation.
type IReportConfiguration interface {
	ReportFiles() []string
	TargetDirectory() string
	SourceDirectories() []string
	HistoryDirectory() string
	ReportTypes() []string
	AssemblyFilters() []string
	ClassFilters() []string
	FileFilters() []string
	VerbosityLevel() logging.VerbosityLevel
	Tag() string
	Title() string
	InvalidReportFilePatterns() []string
	MetricsFile() string
}

// Options is the raw, string-valued configuration as it comes from CLI flags
// or a config file. List values are separated by ';' (report patterns) or ';'/','.
type Options struct {
	Reports         string `mapstructure:"reports"`
	TargetDir       string `mapstructure:"targetdir"`
	ReportTypes     string `mapstructure:"reporttypes"`
	SourceDirs      string `mapstructure:"sourcedirs"`
	HistoryDir      string `mapstructure:"historydir"`
	Tag             string `mapstructure:"tag"`
	Title           string `mapstructure:"title"`
	Verbosity       string `mapstructure:"verbosity"`
	AssemblyFilters string `mapstructure:"assemblyfilters"`
	ClassFilters    string `mapstructure:"classfilters"`
	FileFilters     string `mapstructure:"filefilters"`
	MetricsFile     string `mapstructure:"metricsfile"`
}

// SetDefaults registers the default option values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("targetdir", "coverage-report")
	v.SetDefault("reporttypes", "Html")
	v.SetDefault("verbosity", "Info")
	v.SetDefault("title", DefaultTitle)
}

// LoadOptions reads the optional config file and decodes all settings in v.
// Explicitly set flags bound to v take precedence over file values.
func LoadOptions(v *viper.Viper, configFile string) (Options, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("failed to read config file '%s': %w", configFile, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return opts, nil
}

// ReportPatterns returns the report file patterns, keeping brace groups intact.
func (o Options) ReportPatterns() []string {
	return utils.SplitThatEnsuresGlobsAreSafe(o.Reports, []rune{';'})
}

// ReportConfiguration is a concrete implementation of IReportConfiguration.
type ReportConfiguration struct {
	RFiles             []string
	TDirectory         string
	SDirectories       []string
	HDirectory         string
	RTypes             []string
	AssemblyFilterList []string
	ClassFilterList    []string
	FileFilterList     []string
	VLevel             logging.VerbosityLevel
	CfgTag             string
	CfgTitle           string
	InvalidPatterns    []string
	MFile              string
}

func (rc *ReportConfiguration) ReportFiles() []string                  { return rc.RFiles }
func (rc *ReportConfiguration) TargetDirectory() string                { return rc.TDirectory }
func (rc *ReportConfiguration) SourceDirectories() []string            { return rc.SDirectories }
func (rc *ReportConfiguration) HistoryDirectory() string               { return rc.HDirectory }
func (rc *ReportConfiguration) ReportTypes() []string                  { return rc.RTypes }
func (rc *ReportConfiguration) AssemblyFilters() []string              { return rc.AssemblyFilterList }
func (rc *ReportConfiguration) ClassFilters() []string                 { return rc.ClassFilterList }
func (rc *ReportConfiguration) FileFilters() []string                  { return rc.FileFilterList }
func (rc *ReportConfiguration) VerbosityLevel() logging.VerbosityLevel { return rc.VLevel }
func (rc *ReportConfiguration) Tag() string                            { return rc.CfgTag }
func (rc *ReportConfiguration) Title() string                          { return rc.CfgTitle }
func (rc *ReportConfiguration) InvalidReportFilePatterns() []string    { return rc.InvalidPatterns }
func (rc *ReportConfiguration) MetricsFile() string                    { return rc.MFile }

// WithSourceDirectories returns a copy using dirs as source directories.
func (rc *ReportConfiguration) WithSourceDirectories(dirs []string) *ReportConfiguration {
	cp := *rc
	cp.SDirectories = append([]string(nil), dirs...)
	return &cp
}

// NewReportConfiguration builds the configuration from decoded options.
// reportFiles should be the existing files after glob expansion; invalidPatterns
// are the original patterns that did not resolve to any file.
func NewReportConfiguration(opts Options, reportFiles, invalidPatterns []string) (*ReportConfiguration, error) {
	verbosity := logging.Info
	if strings.TrimSpace(opts.Verbosity) != "" {
		v, err := logging.ParseVerbosityLevel(opts.Verbosity)
		if err != nil {
			return nil, err
		}
		verbosity = v
	}

	reportTypes := splitList(opts.ReportTypes)
	if len(reportTypes) == 0 {
		reportTypes = []string{"Html"}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = DefaultTitle
	}

	return &ReportConfiguration{
		RFiles:             reportFiles,
		TDirectory:         opts.TargetDir,
		SDirectories:       splitList(opts.SourceDirs),
		HDirectory:         strings.TrimSpace(opts.HistoryDir),
		RTypes:             reportTypes,
		AssemblyFilterList: splitList(opts.AssemblyFilters),
		ClassFilterList:    splitList(opts.ClassFilters),
		FileFilterList:     splitList(opts.FileFilters),
		VLevel:             verbosity,
		CfgTag:             strings.TrimSpace(opts.Tag),
		CfgTitle:           title,
		InvalidPatterns:    invalidPatterns,
		MFile:              strings.TrimSpace(opts.MetricsFile),
	}, nil
}

// splitList splits on ';' and ',' and drops empty entries.
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

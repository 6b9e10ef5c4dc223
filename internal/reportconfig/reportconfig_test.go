package reportconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/IgorBayerl/covreport/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportConfiguration_Defaults(t *testing.T) {
	cfg, err := NewReportConfiguration(Options{TargetDir: "out"}, []string{"a.xml"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Html"}, cfg.ReportTypes())
	assert.Equal(t, DefaultTitle, cfg.Title())
	assert.Equal(t, logging.Info, cfg.VerbosityLevel())
	assert.Equal(t, "out", cfg.TargetDirectory())
	assert.Empty(t, cfg.SourceDirectories())
	assert.Empty(t, cfg.AssemblyFilters())
	assert.Equal(t, "", cfg.HistoryDirectory())
}

func TestNewReportConfiguration_Lists(t *testing.T) {
	opts := Options{
		ReportTypes:     "Html, TextSummary;JsonSummary",
		SourceDirs:      "src;lib,",
		AssemblyFilters: "+App*;-App.Tests",
		ClassFilters:    "-*Generated*",
		FileFilters:     "",
		Verbosity:       "warning",
		Tag:             " build-7 ",
		HistoryDir:      "hist",
		MetricsFile:     "metrics.prom",
	}
	cfg, err := NewReportConfiguration(opts, []string{"a.xml"}, []string{"missing/*.xml"})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"Html", "TextSummary", "JsonSummary"}, cfg.ReportTypes()); diff != "" {
		t.Errorf("ReportTypes() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"src", "lib"}, cfg.SourceDirectories())
	assert.Equal(t, []string{"+App*", "-App.Tests"}, cfg.AssemblyFilters())
	assert.Equal(t, []string{"-*Generated*"}, cfg.ClassFilters())
	assert.Empty(t, cfg.FileFilters())
	assert.Equal(t, logging.Warning, cfg.VerbosityLevel())
	assert.Equal(t, "build-7", cfg.Tag())
	assert.Equal(t, "hist", cfg.HistoryDirectory())
	assert.Equal(t, "metrics.prom", cfg.MetricsFile())
	assert.Equal(t, []string{"missing/*.xml"}, cfg.InvalidReportFilePatterns())
}

func TestNewReportConfiguration_InvalidVerbosity(t *testing.T) {
	_, err := NewReportConfiguration(Options{Verbosity: "chatty"}, nil, nil)
	assert.Error(t, err)
}

func TestWithSourceDirectories(t *testing.T) {
	cfg, err := NewReportConfiguration(Options{SourceDirs: "a"}, nil, nil)
	require.NoError(t, err)

	updated := cfg.WithSourceDirectories([]string{"b", "c"})
	assert.Equal(t, []string{"a"}, cfg.SourceDirectories())
	assert.Equal(t, []string{"b", "c"}, updated.SourceDirectories())
}

func TestLoadOptions_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "covreport.yaml")
	content := "reports: \"coverage/*.xml;{a,b}.out\"\nreporttypes: TextSummary\ntag: nightly\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.Set("tag", "override")

	opts, err := LoadOptions(v, file)
	require.NoError(t, err)

	assert.Equal(t, "TextSummary", opts.ReportTypes)
	assert.Equal(t, "override", opts.Tag)
	assert.Equal(t, "coverage-report", opts.TargetDir)
	assert.Equal(t, DefaultTitle, opts.Title)
	assert.Equal(t, []string{"coverage/*.xml", "{a,b}.out"}, opts.ReportPatterns())
}

func TestLoadOptions_MissingConfigFile(t *testing.T) {
	_, err := LoadOptions(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOptions_NoConfigFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	opts, err := LoadOptions(v, "")
	require.NoError(t, err)
	assert.Equal(t, "Html", opts.ReportTypes)
	assert.Equal(t, "Info", opts.Verbosity)
}

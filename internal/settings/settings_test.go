package settings

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	if diff := cmp.Diff(NewSettings(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	s, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"COVREPORT_DEFAULT_ASSEMBLY_NAME":       "Main",
		"COVREPORT_MAX_HISTORIC_COVERAGE_FILES": "5",
		"COVREPORT_MAX_DECIMAL_PLACES":          "2",
		"COVREPORT_RAW_MODE":                    "true",
		"COVREPORT_OTLP_ENDPOINT":               "http://collector:4317",
	}))
	require.NoError(t, err)

	assert.Equal(t, "Main", s.DefaultAssemblyName)
	assert.Equal(t, 5, s.MaximumNumberOfHistoricCoverageFiles)
	assert.Equal(t, 2, s.MaximumDecimalPlacesForCoverageQuotas)
	assert.Equal(t, "coverage-history.db", s.HistoryDatabaseName)
	assert.True(t, s.RawMode)
	assert.Equal(t, "http://collector:4317", s.OTLPEndpoint)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"COVREPORT_MAX_HISTORIC_COVERAGE_FILES": "-1",
	}))
	require.Error(t, err)

	_, err = load(context.Background(), envconfig.MapLookuper(map[string]string{
		"COVREPORT_MAX_DECIMAL_PLACES": "many",
	}))
	require.Error(t, err)
}

// Package settings holds process-level tunables that are not part of a single
// report configuration. They are read from COVREPORT_* environment variables.
package settings

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Settings are runtime tunables shared by parsers, the history store and renderers.
type Settings struct {
	// DefaultAssemblyName is used when a parser cannot determine an assembly name.
	DefaultAssemblyName string `env:"COVREPORT_DEFAULT_ASSEMBLY_NAME, default=Default"`
	// MaximumNumberOfHistoricCoverageFiles caps the executions kept in the history store.
	MaximumNumberOfHistoricCoverageFiles int `env:"COVREPORT_MAX_HISTORIC_COVERAGE_FILES, default=100"`
	// MaximumDecimalPlacesForCoverageQuotas controls percentage formatting in renderers.
	MaximumDecimalPlacesForCoverageQuotas int `env:"COVREPORT_MAX_DECIMAL_PLACES, default=1"`
	// HistoryDatabaseName is the file created inside the history directory.
	HistoryDatabaseName string `env:"COVREPORT_HISTORY_DATABASE, default=coverage-history.db"`
	// RawMode keeps compiler generated class and method names as they appear in the report.
	RawMode bool `env:"COVREPORT_RAW_MODE, default=false"`
	// OTLPEndpoint is the collector URL spans are exported to over gRPC. Tracing is off when empty.
	OTLPEndpoint string `env:"COVREPORT_OTLP_ENDPOINT"`
}

// NewSettings returns the built-in defaults without consulting the environment.
func NewSettings() *Settings {
	return &Settings{
		DefaultAssemblyName:                   "Default",
		MaximumNumberOfHistoricCoverageFiles:  100,
		MaximumDecimalPlacesForCoverageQuotas: 1,
		HistoryDatabaseName:                   "coverage-history.db",
	}
}

// Load reads the settings from the process environment.
func Load(ctx context.Context) (*Settings, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Settings, error) {
	var s Settings
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load settings from environment: %w", err)
	}
	if s.MaximumNumberOfHistoricCoverageFiles < 0 {
		return nil, fmt.Errorf("COVREPORT_MAX_HISTORIC_COVERAGE_FILES must not be negative, got %d", s.MaximumNumberOfHistoricCoverageFiles)
	}
	return &s, nil
}

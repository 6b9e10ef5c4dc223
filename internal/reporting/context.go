package reporting

import (
	"log/slog"

	"github.com/IgorBayerl/covreport/internal/reportconfig"
	"github.com/IgorBayerl/covreport/internal/settings"
)

// IReportContext bundles what renderers need besides the coverage model.
type IReportContext interface {
	ReportConfiguration() reportconfig.IReportConfiguration
	Settings() *settings.Settings
	Logger() *slog.Logger
}

// ReportContext is a concrete implementation of IReportContext.
type ReportContext struct {
	Cfg   reportconfig.IReportConfiguration
	Stngs *settings.Settings
	Log   *slog.Logger
}

func (rc *ReportContext) ReportConfiguration() reportconfig.IReportConfiguration { return rc.Cfg }
func (rc *ReportContext) Settings() *settings.Settings                           { return rc.Stngs }

// Logger returns the renderer logger. Without one, output is discarded.
func (rc *ReportContext) Logger() *slog.Logger {
	if rc.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rc.Log
}

// NewReportContext creates a new ReportContext.
func NewReportContext(config reportconfig.IReportConfiguration, settings *settings.Settings, logger *slog.Logger) *ReportContext {
	return &ReportContext{
		Cfg:   config,
		Stngs: settings,
		Log:   logger,
	}
}

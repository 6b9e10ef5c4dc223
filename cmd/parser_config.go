package main

import (
	"github.com/IgorBayerl/covreport/internal/parser/filtering"
	"github.com/IgorBayerl/covreport/internal/reportconfig"
	"github.com/IgorBayerl/covreport/internal/settings"
)

// parserConfig hands the parsers the subset of the report configuration they need.
type parserConfig struct {
	sourceDirs     []string
	assemblyFilter filtering.IFilter
	classFilter    filtering.IFilter
	fileFilter     filtering.IFilter
	settings       *settings.Settings
}

func newParserConfig(cfg reportconfig.IReportConfiguration, s *settings.Settings) (*parserConfig, error) {
	assemblyFilter, err := filtering.NewDefaultFilter(cfg.AssemblyFilters())
	if err != nil {
		return nil, err
	}
	classFilter, err := filtering.NewDefaultFilter(cfg.ClassFilters())
	if err != nil {
		return nil, err
	}
	fileFilter, err := filtering.NewDefaultFilter(cfg.FileFilters(), true)
	if err != nil {
		return nil, err
	}
	return &parserConfig{
		sourceDirs:     cfg.SourceDirectories(),
		assemblyFilter: assemblyFilter,
		classFilter:    classFilter,
		fileFilter:     fileFilter,
		settings:       s,
	}, nil
}

func (c *parserConfig) SourceDirectories() []string        { return c.sourceDirs }
func (c *parserConfig) AssemblyFilters() filtering.IFilter { return c.assemblyFilter }
func (c *parserConfig) ClassFilters() filtering.IFilter    { return c.classFilter }
func (c *parserConfig) FileFilters() filtering.IFilter     { return c.fileFilter }
func (c *parserConfig) Settings() *settings.Settings       { return c.settings }

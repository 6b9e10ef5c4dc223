package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/IgorBayerl/covreport/internal/analyzer"
	"github.com/IgorBayerl/covreport/internal/glob"
	"github.com/IgorBayerl/covreport/internal/history"
	"github.com/IgorBayerl/covreport/internal/logging"
	"github.com/IgorBayerl/covreport/internal/parser"
	"github.com/IgorBayerl/covreport/internal/reportconfig"
	"github.com/IgorBayerl/covreport/internal/reporter"
	"github.com/IgorBayerl/covreport/internal/reporting"
	"github.com/IgorBayerl/covreport/internal/settings"
	"github.com/prometheus/client_golang/prometheus"
)

// run executes one report generation. Log output goes to logOut.
func run(ctx context.Context, opts reportconfig.Options, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	stngs, err := settings.Load(ctx)
	if err != nil {
		return err
	}

	reportFiles, invalidPatterns := expandReportPatterns(opts.ReportPatterns())
	cfg, err := reportconfig.NewReportConfiguration(opts, reportFiles, invalidPatterns)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logOut, cfg.VerbosityLevel())
	slog.SetDefault(logger)

	for _, p := range cfg.InvalidReportFilePatterns() {
		logger.Warn("No files found for report pattern", "pattern", p)
	}
	if len(cfg.ReportFiles()) == 0 {
		return errors.New("no valid report files found after expanding patterns")
	}

	parserCfg, err := newParserConfig(cfg, stngs)
	if err != nil {
		return err
	}

	merged, err := parseReports(cfg.ReportFiles(), parserCfg, logger)
	if err != nil {
		return err
	}
	if len(cfg.SourceDirectories()) == 0 && len(merged.SourceDirectories) > 0 {
		logger.Info("Using source directories from coverage reports", "sourceDirs", merged.SourceDirectories)
		cfg = cfg.WithSourceDirectories(merged.SourceDirectories)
	}

	reportCtx := reporting.NewReportContext(cfg, stngs, logger)
	builders, err := reporter.NewReportBuilders(cfg.ReportTypes(), reportCtx)
	if err != nil {
		return err
	}

	var store *history.Store
	if dir := cfg.HistoryDirectory(); dir != "" {
		store, err = history.Open(filepath.Join(dir, stngs.HistoryDatabaseName))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("Failed to close history database", "error", cerr)
			}
		}()
		n, err := store.ApplyHistoricCoverage(ctx, merged.Assemblies, stngs.MaximumNumberOfHistoricCoverageFiles)
		if err != nil {
			return err
		}
		logger.Debug("Loaded historic coverage", "records", n, "path", store.Path())
	}

	registry := prometheus.NewRegistry()
	genOpts := []reporting.Option{
		reporting.WithLogger(logger),
		reporting.WithMetrics(reporting.NewMetrics(registry)),
		reporting.WithTag(cfg.Tag()),
	}

	tp, err := newTracerProvider(ctx, stngs.OTLPEndpoint)
	if err != nil {
		return err
	}
	if tp != nil {
		logger.Debug("Exporting spans", "endpoint", stngs.OTLPEndpoint)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shut down tracer provider", "error", err)
			}
		}()
		genOpts = append(genOpts, reporting.WithTracerProvider(tp))
	}

	generator, err := reporting.NewReportGenerator(
		merged,
		parserCfg.AssemblyFilters(),
		parserCfg.ClassFilters(),
		builders,
		genOpts...,
	)
	if err != nil {
		return err
	}

	executionTime := time.Now()
	logger.Info("Generating reports", "targetDir", cfg.TargetDirectory(), "reportTypes", cfg.ReportTypes())
	result := generator.GenerateReport(ctx, store != nil, executionTime)

	if store != nil {
		if err := store.Save(ctx, result.Summary.Assemblies, executionTime, cfg.Tag()); err != nil {
			return err
		}
		pruned, err := store.Prune(ctx, stngs.MaximumNumberOfHistoricCoverageFiles)
		if err != nil {
			return err
		}
		if pruned > 0 {
			logger.Debug("Pruned historic coverage", "executions", pruned)
		}
	}

	if path := cfg.MetricsFile(); path != "" {
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("failed to write metrics file %s: %w", path, err)
		}
	}

	logger.Info("Report generation completed",
		"classes", result.ProcessedClasses,
		"failures", len(result.Failures),
		"duration", time.Since(start).Round(time.Millisecond))

	if err := result.Err(); err != nil {
		return fmt.Errorf("%d renderer calls failed: %w", len(result.Failures), err)
	}
	return nil
}

// expandReportPatterns resolves the report patterns to existing files, without
// duplicates. Patterns that fail or match nothing are returned separately.
func expandReportPatterns(patterns []string) (files, invalid []string) {
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		expanded, err := glob.GetFiles(pattern)
		if err != nil || len(expanded) == 0 {
			invalid = append(invalid, pattern)
			continue
		}
		for _, f := range expanded {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	return files, invalid
}

// parseReports parses every file with the first parser that supports it and
// merges the results. Files no parser understands are logged and skipped.
func parseReports(files []string, cfg parser.ParserConfig, logger *slog.Logger) (*parser.ParserResult, error) {
	var results []*parser.ParserResult
	for _, file := range files {
		p, err := parser.FindParserForFile(file)
		if err != nil {
			logger.Error("Skipping coverage report", "file", file, "error", err)
			continue
		}
		logger.Info("Parsing coverage report", "file", file, "parser", p.Name())
		res, err := p.Parse(file, cfg)
		if err != nil {
			logger.Error("Failed to parse coverage report", "file", file, "parser", p.Name(), "error", err)
			continue
		}
		results = append(results, res)
	}
	if len(results) == 0 {
		return nil, errors.New("none of the coverage reports could be parsed")
	}
	return analyzer.MergeParserResults(results)
}

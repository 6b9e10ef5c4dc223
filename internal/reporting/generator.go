package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IgorBayerl/covreport/internal/filereader"
	"github.com/IgorBayerl/covreport/internal/model"
	"github.com/IgorBayerl/covreport/internal/parser"
	"github.com/IgorBayerl/covreport/internal/parser/filtering"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/IgorBayerl/covreport/internal/reporting"
	summaryTarget       = "summary"
)

// RendererFailure is a single isolated failure of a renderer call.
type RendererFailure struct {
	// ClassName is the class being rendered, or "summary".
	ClassName  string
	ReportType string
	Stage      string
	Err        error
}

func (f RendererFailure) Error() string {
	return fmt.Sprintf("%s renderer failed for '%s': %v", f.ReportType, f.ClassName, f.Err)
}

func (f RendererFailure) Unwrap() error { return f.Err }

// GenerationResult describes a completed run.
type GenerationResult struct {
	RunID            string
	TotalClasses     int
	ProcessedClasses int
	Summary          *model.SummaryResult
	Failures         []RendererFailure
}

// Err joins all isolated renderer failures, nil when every call succeeded.
func (r *GenerationResult) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// ReportGenerator drives the configured renderers over the filtered coverage model.
type ReportGenerator struct {
	result         *parser.ParserResult
	assemblyFilter filtering.IFilter
	classFilter    filtering.IFilter
	builders       []IReportBuilder

	logger       *slog.Logger
	sourceReader model.SourceReader
	merger       HistoricCoverageMerger
	customMerger bool
	tag          string
	metrics      *Metrics
	tracer       oteltrace.Tracer
	runID        string

	progress atomic.Int64
}

// Option configures a ReportGenerator.
type Option func(*ReportGenerator)

// WithLogger sets the logger used for progress and failure output.
func WithLogger(logger *slog.Logger) Option {
	return func(g *ReportGenerator) { g.logger = logger }
}

// WithSourceReader sets the reader used to load source files for analysis.
func WithSourceReader(reader model.SourceReader) Option {
	return func(g *ReportGenerator) { g.sourceReader = reader }
}

// WithHistoricCoverageMerger replaces the default snapshot merger.
func WithHistoricCoverageMerger(merger HistoricCoverageMerger) Option {
	return func(g *ReportGenerator) {
		g.merger = merger
		g.customMerger = true
	}
}

// WithTag labels the snapshots taken by the default merger. A merger set with
// WithHistoricCoverageMerger does its own labelling and ignores the tag.
func WithTag(tag string) Option {
	return func(g *ReportGenerator) { g.tag = tag }
}

// WithMetrics enables metric recording.
func WithMetrics(metrics *Metrics) Option {
	return func(g *ReportGenerator) { g.metrics = metrics }
}

// WithTracerProvider sets the provider used for spans instead of the global one.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(g *ReportGenerator) {
		g.tracer = tp.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	}
}

// WithRunID sets the identifier attached to every log line of the run.
func WithRunID(id string) Option {
	return func(g *ReportGenerator) { g.runID = id }
}

// NewReportGenerator validates the collaborators and creates a generator.
func NewReportGenerator(
	result *parser.ParserResult,
	assemblyFilter filtering.IFilter,
	classFilter filtering.IFilter,
	builders []IReportBuilder,
	opts ...Option,
) (*ReportGenerator, error) {
	if result == nil {
		return nil, errors.New("parser result is required")
	}
	if assemblyFilter == nil {
		return nil, errors.New("assembly filter is required")
	}
	if classFilter == nil {
		return nil, errors.New("class filter is required")
	}
	if len(builders) == 0 {
		return nil, errors.New("at least one report builder is required")
	}
	for i, b := range builders {
		if b == nil {
			return nil, fmt.Errorf("report builder at index %d is nil", i)
		}
	}

	g := &ReportGenerator{
		result:         result,
		assemblyFilter: assemblyFilter,
		classFilter:    classFilter,
		builders:       append([]IReportBuilder(nil), builders...),
		logger:         slog.Default(),
		sourceReader:   filereader.NewLocalFileReader(),
		tracer:         otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0")),
		runID:          uuid.NewString(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.customMerger {
		g.merger = NewSnapshotMerger(g.tag)
	}
	if g.logger == nil || g.sourceReader == nil || g.merger == nil || g.tracer == nil {
		return nil, errors.New("options must not set nil collaborators")
	}
	return g, nil
}

// GenerateReport renders every included class with every builder and then the summary.
// Renderer failures are isolated: they are logged, counted and listed in the result,
// and never stop the run. When addHistoricCoverage is set, each class gets exactly
// one snapshot taken at executionTime before any renderer sees it.
func (g *ReportGenerator) GenerateReport(ctx context.Context, addHistoricCoverage bool, executionTime time.Time) *GenerationResult {
	ctx, span := g.tracer.Start(ctx, "reporting.GenerateReport", oteltrace.WithAttributes(
		attribute.String("run.id", g.runID),
		attribute.Bool("history.enabled", addHistoricCoverage),
	))
	defer span.End()

	logger := g.logger.With("run", g.runID)

	assemblies := buildFilteredView(g.result.Assemblies, g.assemblyFilter, g.classFilter)
	total := countClasses(assemblies)
	logger.Info("Analyzing classes", "total", total)

	res := &GenerationResult{RunID: g.runID, TotalClasses: total}
	g.progress.Store(0)

	for _, assembly := range assemblies {
		for _, class := range assembly.Classes {
			counter := g.progress.Add(1)
			logger.Info("Creating report",
				"progress", fmt.Sprintf("%d/%d", counter, total),
				"assembly", assembly.ShortName(),
				"class", class.Name)

			if addHistoricCoverage {
				g.merger.Merge(class, executionTime)
			}

			for _, builder := range g.builders {
				g.invoke(ctx, logger, res, builder, stageClass, class.Name, func() error {
					return builder.CreateClassReport(class, g.analyzeFiles(class))
				})
			}
			res.ProcessedClasses++
			g.metrics.classProcessed()
		}
	}

	summary := model.NewSummaryResult(assemblies, g.result.ParserName, g.result.SupportsBranchCoverage, g.result.SourceDirectories)
	res.Summary = summary

	for _, builder := range g.builders {
		g.invoke(ctx, logger, res, builder, stageSummary, summaryTarget, func() error {
			return builder.CreateSummaryReport(summary)
		})
	}

	span.SetAttributes(
		attribute.Int("classes.total", total),
		attribute.Int("renderer.failures", len(res.Failures)),
	)
	if len(res.Failures) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d renderer failures", len(res.Failures)))
	}
	return res
}

// analyzeFiles computes fresh analyses so no two renderers share one.
func (g *ReportGenerator) analyzeFiles(class *model.Class) []*model.FileAnalysis {
	analyses := make([]*model.FileAnalysis, 0, len(class.Files))
	for _, f := range class.Files {
		analyses = append(analyses, f.AnalyzeFile(g.sourceReader))
	}
	return analyses
}

// invoke runs call as a fault boundary: errors and panics are recorded, never propagated.
func (g *ReportGenerator) invoke(
	ctx context.Context,
	logger *slog.Logger,
	res *GenerationResult,
	builder IReportBuilder,
	stage, target string,
	call func() error,
) {
	reportType := reportTypeOf(builder)
	_, span := g.tracer.Start(ctx, "renderer."+stage, oteltrace.WithAttributes(
		attribute.String("report.type", reportType),
		attribute.String("class", target),
	))
	defer span.End()

	start := time.Now()
	err := protect(call)
	g.metrics.observeCall(reportType, stage, time.Since(start), err)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if stage == stageSummary {
		logger.Error("Error during rendering summary report", "reportType", reportType, "error", err)
	} else {
		logger.Error("Error during rendering report for class", "class", target, "reportType", reportType, "error", err)
	}
	res.Failures = append(res.Failures, RendererFailure{
		ClassName:  target,
		ReportType: reportType,
		Stage:      stage,
		Err:        err,
	})
}

// reportTypeOf returns the builder's report type, or its Go type name when
// ReportType itself panics.
func reportTypeOf(builder IReportBuilder) (reportType string) {
	defer func() {
		if r := recover(); r != nil {
			reportType = fmt.Sprintf("%T", builder)
		}
	}()
	return builder.ReportType()
}

func protect(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panicked: %v", r)
		}
	}()
	return call()
}

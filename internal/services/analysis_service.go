package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"retrocli/internal/exporter"
	"retrocli/internal/infrastructure"
	"retrocli/internal/retro"
	"retrocli/pkg/contracts/domain"
)

// Advisory messages surfaced when an analysis produced nothing to show.
// "Nothing parsed" and "everything filtered out" are different situations
// and get different suggestions.
const (
	msgNoValidFeedback = "No valid feedback could be aggregated from the uploaded files. Check the processing log."
	msgAdjustFilters   = "No feedback items found within the selected vote range. Try adjusting your filters."
)

// AnalysisReport is everything one aggregation run produces: the consolidated
// records, the per-file processing log, and the chart series derived from the
// result.
type AnalysisReport struct {
	Result          domain.AggregationResult `json:"result"`
	Outcomes        []domain.Outcome         `json:"outcomes"`
	Log             []string                 `json:"log"`
	TopFeedback     []domain.FeedbackRecord  `json:"top_feedback"`
	Histogram       []retro.HistogramBucket  `json:"histogram"`
	TaskAssociation retro.TaskAssociation    `json:"task_association"`
	Message         string                   `json:"message,omitempty"`
}

// AnalysisService runs aggregations and renders exports. It is stateless:
// nothing persists between calls.
type AnalysisService struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.AggregationMetrics
}

// Option configures an AnalysisService.
type Option func(*AnalysisService)

// WithTracer attaches a tracer for per-run spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *AnalysisService) { s.tracer = tracer }
}

// WithMetrics attaches the aggregation instruments.
func WithMetrics(m *infrastructure.AggregationMetrics) Option {
	return func(s *AnalysisService) { s.metrics = m }
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(logger *slog.Logger, opts ...Option) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AnalysisService{
		logger: logger.With(slog.String("component", "analysis_service")),
		tracer: noop.NewTracerProvider().Tracer("analysis"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze aggregates the given files and derives the chart series.
func (s *AnalysisService) Analyze(ctx context.Context, files []domain.SourceFile, minVotes, maxVotes int) *AnalysisReport {
	ctx, span := s.tracer.Start(ctx, "analysis.aggregate",
		trace.WithAttributes(
			attribute.Int("files", len(files)),
			attribute.Int("min_votes", minVotes),
			attribute.Int("max_votes", maxVotes),
		))
	defer span.End()

	start := time.Now()
	result, outcomes := retro.Aggregate(ctx, files, minVotes, maxVotes)
	s.recordMetrics(ctx, outcomes, time.Since(start))

	report := &AnalysisReport{
		Result:          result,
		Outcomes:        outcomes,
		Log:             formatLog(outcomes),
		TopFeedback:     retro.TopFeedback(result, retro.DefaultTopN),
		Histogram:       retro.VoteHistogram(result, retro.DefaultHistogramBuckets),
		TaskAssociation: retro.TaskAssociationCounts(result),
	}

	switch {
	case len(result.Records) == 1 && result.Records[0].IsSentinel():
		report.Message = msgNoValidFeedback
	case len(result.Records) == 0:
		report.Message = msgAdjustFilters
	}

	s.logger.InfoContext(ctx, "analysis complete",
		slog.Int("files", len(files)),
		slog.Int("records", len(result.Records)),
		slog.Duration("took", time.Since(start)))

	return report
}

// Export aggregates the given files and renders the full result set in the
// requested format.
func (s *AnalysisService) Export(ctx context.Context, files []domain.SourceFile, minVotes, maxVotes int, format exporter.Format, w io.Writer) (*AnalysisReport, error) {
	report := s.Analyze(ctx, files, minVotes, maxVotes)

	ctx, span := s.tracer.Start(ctx, "analysis.export",
		trace.WithAttributes(attribute.String("format", string(format))))
	defer span.End()

	if err := exporter.Write(w, format, report.Result); err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("format", string(format))))
	}

	return report, nil
}

// recordMetrics folds one run's outcomes into the instruments.
func (s *AnalysisService) recordMetrics(ctx context.Context, outcomes []domain.Outcome, took time.Duration) {
	if s.metrics == nil {
		return
	}

	s.metrics.AggregationsTotal.Add(ctx, 1)
	s.metrics.AggregationDuration.Record(ctx, took.Seconds())
	for _, o := range outcomes {
		if o.OK() {
			s.metrics.FilesProcessedTotal.Add(ctx, 1)
		} else {
			s.metrics.FilesSkippedTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("reason", string(o.Kind))))
		}
	}
}

// formatLog renders the outcomes as the user-facing processing log.
func formatLog(outcomes []domain.Outcome) []string {
	log := make([]string, len(outcomes))
	for i, o := range outcomes {
		log[i] = o.String()
	}
	return log
}

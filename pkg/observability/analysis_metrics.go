package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal       = "kartlytics.analysis.runs.total"
	metricLapsTotal       = "kartlytics.analysis.laps.total"
	metricEntitiesTotal   = "kartlytics.analysis.entities.total"
	metricAnalysisSeconds = "kartlytics.analysis.duration.seconds"

	attrKind    = "kind"
	attrOutcome = "outcome"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// analysisBucketBoundaries covers 100µs to 10s: a race of a few thousand
// laps interpolates in milliseconds.
var analysisBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// AnalysisMetrics holds OTel instruments for race analysis runs.
type AnalysisMetrics struct {
	runsTotal     metric.Int64Counter
	lapsTotal     metric.Int64Counter
	entitiesTotal metric.Int64Counter
	duration      metric.Float64Histogram
}

// AnalysisStats describes one completed analysis run.
type AnalysisStats struct {
	Laps     int
	Teams    int
	Drivers  int
	Duration time.Duration
	Err      error
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total analysis runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	laps, err := mt.Int64Counter(metricLapsTotal,
		metric.WithDescription("Total laps ingested"),
		metric.WithUnit("{lap}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLapsTotal, err)
	}

	entities, err := mt.Int64Counter(metricEntitiesTotal,
		metric.WithDescription("Total teams and drivers interpolated"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEntitiesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricAnalysisSeconds,
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAnalysisSeconds, err)
	}

	return &AnalysisMetrics{
		runsTotal:     runs,
		lapsTotal:     laps,
		entitiesTotal: entities,
		duration:      duration,
	}, nil
}

// RecordRun records a completed analysis run.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	outcome := outcomeOK
	if stats.Err != nil {
		outcome = outcomeError
	}

	am.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
	am.duration.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(attribute.String(attrOutcome, outcome)))

	if stats.Err != nil {
		return
	}

	am.lapsTotal.Add(ctx, int64(stats.Laps))
	am.entitiesTotal.Add(ctx, int64(stats.Teams), metric.WithAttributes(attribute.String(attrKind, "team")))
	am.entitiesTotal.Add(ctx, int64(stats.Drivers), metric.WithAttributes(attribute.String(attrKind, "driver")))
}

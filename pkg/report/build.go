package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/kartlytics/pkg/observability"
	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/stats"
	"github.com/Sumatoshi-tech/kartlytics/pkg/timeline"
)

const tracerName = "kartlytics/report"

// Options configures Build.
type Options struct {
	Timeline        timeline.Options
	OutlierFraction float64
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Tracer defaults to the global tracer provider.
	Tracer trace.Tracer
	// Metrics is optional.
	Metrics *observability.AnalysisMetrics
}

// DefaultOptions returns options with the default tolerance and outlier fraction.
func DefaultOptions() Options {
	return Options{
		Timeline:        timeline.Options{Tolerance: timeline.Tolerance},
		OutlierFraction: stats.DefaultOutlierFraction,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}

	return otel.Tracer(tracerName)
}

// Build validates the race result and runs the team and driver pipelines.
// On any failure no bundle is returned.
func Build(ctx context.Context, res *race.Result, opts Options) (*Bundle, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: no race result", race.ErrMalformedRaceData)
	}

	logger := opts.logger()
	start := time.Now()

	ctx, span := opts.tracer().Start(ctx, "kartlytics.analysis",
		trace.WithAttributes(
			attribute.String("race.name", res.RaceName),
			attribute.Int("race.teams", len(res.Results)),
		))
	defer span.End()

	bundle, err := build(ctx, logger, res, opts)

	runStats := observability.AnalysisStats{
		Laps:     totalLaps(res),
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		opts.Metrics.RecordRun(ctx, runStats)
		logger.WarnContext(ctx, "race analysis failed", "race", res.RaceName, "error", err)

		return nil, err
	}

	runStats.Teams = len(bundle.Teams.Entities)
	runStats.Drivers = len(bundle.Drivers.Entities)

	span.SetAttributes(
		attribute.Int("analysis.laps", runStats.Laps),
		attribute.Int("analysis.drivers", runStats.Drivers),
		attribute.Int("analysis.axis_points", len(bundle.Teams.SharedAxis)),
	)
	opts.Metrics.RecordRun(ctx, runStats)

	logger.InfoContext(ctx, "race analysed",
		"race", res.RaceName,
		"teams", runStats.Teams,
		"drivers", runStats.Drivers,
		"laps", runStats.Laps,
		"duration", runStats.Duration,
	)

	return bundle, nil
}

func build(ctx context.Context, logger *slog.Logger, res *race.Result, opts Options) (*Bundle, error) {
	validateErr := res.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	phase := time.Now()

	teams, err := timeline.Teams(ctx, res, opts.Timeline)
	if err != nil {
		return nil, fmt.Errorf("team analysis: %w", err)
	}

	logger.DebugContext(ctx, "team run done", "axis_points", len(teams.SharedAxis), "duration", time.Since(phase))

	phase = time.Now()

	drivers, err := timeline.Drivers(ctx, res, opts.Timeline)
	if err != nil {
		return nil, fmt.Errorf("driver analysis: %w", err)
	}

	logger.DebugContext(ctx, "driver run done", "axis_points", len(drivers.SharedAxis), "duration", time.Since(phase))

	driverSummaries, err := stats.Drivers(res, opts.OutlierFraction)
	if err != nil {
		return nil, fmt.Errorf("driver summaries: %w", err)
	}

	return &Bundle{
		RaceName:        res.RaceName,
		Teams:           newRun(teams),
		Drivers:         newRun(drivers),
		TeamSummaries:   stats.Teams(res),
		DriverSummaries: driverSummaries,
	}, nil
}

func totalLaps(res *race.Result) int {
	var laps int

	for _, team := range res.Results {
		laps += len(team.Laps)
	}

	return laps
}

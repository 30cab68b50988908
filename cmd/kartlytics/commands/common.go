// Package commands implements the kartlytics subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/kartlytics/pkg/config"
	"github.com/Sumatoshi-tech/kartlytics/pkg/observability"
	"github.com/Sumatoshi-tech/kartlytics/pkg/plotpage"
	"github.com/Sumatoshi-tech/kartlytics/pkg/report"
	"github.com/Sumatoshi-tech/kartlytics/pkg/terminal"
	"github.com/Sumatoshi-tech/kartlytics/pkg/timeline"
	"github.com/Sumatoshi-tech/kartlytics/pkg/version"
)

// Globals holds the persistent root flags shared by every subcommand.
type Globals struct {
	Verbose    bool
	Quiet      bool
	LogJSON    bool
	ConfigPath string
}

// runtime is the per-invocation environment: configuration plus telemetry.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.AnalysisMetrics
	logger    *slog.Logger
}

// setup loads the configuration and initialises logging, tracing and metrics.
// The caller must call shutdown.
func (g *Globals) setup(mode observability.AppMode, logOutput io.Writer) (*runtime, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = mode == observability.ModeServe
	obsCfg.LogLevel = level
	obsCfg.LogJSON = g.LogJSON || cfg.Logging.Format == "json"

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	providers, err := observability.InitWithWriter(obsCfg, logOutput)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create analysis metrics: %w", err), providers.Shutdown(context.Background()))
	}

	return &runtime{
		cfg:       cfg,
		providers: providers,
		metrics:   metrics,
		logger:    providers.Logger,
	}, nil
}

// shutdown flushes telemetry, logging instead of failing the command.
func (rt *runtime) shutdown() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.logger.Warn("observability shutdown failed", "error", err)
	}
}

func (rt *runtime) reportOptions() report.Options {
	return report.Options{
		Timeline: timeline.Options{
			Tolerance: rt.cfg.Analysis.Tolerance,
			Workers:   rt.cfg.Analysis.Workers,
		},
		OutlierFraction: rt.cfg.Stats.OutlierFraction,
		Logger:          rt.logger,
		Tracer:          rt.providers.Tracer,
		Metrics:         rt.metrics,
	}
}

func (rt *runtime) renderOptions(themeOverride, titleOverride string, noColor bool) (report.RenderOptions, error) {
	themeName := rt.cfg.Report.Theme
	if themeOverride != "" {
		themeName = themeOverride
	}

	theme, err := plotpage.ParseTheme(themeName)
	if err != nil {
		return report.RenderOptions{}, err
	}

	title := rt.cfg.Report.Title
	if titleOverride != "" {
		title = titleOverride
	}

	term := terminal.NewConfig()
	term.NoColor = term.NoColor || noColor

	return report.RenderOptions{Title: title, Theme: theme, Terminal: term}, nil
}

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/kartlytics/pkg/config"
)

const testMaxBodyBytes = 8_000_000

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kartlytics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.InDelta(t, config.DefaultTolerance, cfg.Analysis.Tolerance, 1e-12)
	assert.Equal(t, config.DefaultWorkers, cfg.Analysis.Workers)
	assert.InDelta(t, config.DefaultOutlierFraction, cfg.Stats.OutlierFraction, 1e-12)
	assert.Equal(t, config.DefaultReportFormat, cfg.Report.Format)
	assert.Equal(t, config.DefaultReportTheme, cfg.Report.Theme)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, config.DefaultServerReadTimeout, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)

	size, err := cfg.Server.MaxBodyBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(testMaxBodyBytes), size)

	cacheSize, err := cfg.Server.CacheBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(16_000_000), cacheSize)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
analysis:
  tolerance: 0.001
  workers: 4
stats:
  outlier_fraction: 0.2
report:
  format: plot
  theme: light
  title: "Summer Cup"
server:
  port: 9000
  host: "127.0.0.1"
  max_body_size: 512KiB
  cache_size: "0"
  read_timeout: 5s
logging:
  level: debug
  format: json
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.001, cfg.Analysis.Tolerance, 1e-12)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.InDelta(t, 0.2, cfg.Stats.OutlierFraction, 1e-12)
	assert.Equal(t, "plot", cfg.Report.Format)
	assert.Equal(t, "light", cfg.Report.Theme)
	assert.Equal(t, "Summer Cup", cfg.Report.Title)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)

	size, err := cfg.Server.MaxBodyBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024), size)

	cacheSize, err := cfg.Server.CacheBytes()
	require.NoError(t, err)
	assert.Zero(t, cacheSize)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("KARTLYTICS_SERVER_PORT", "9090")
	t.Setenv("KARTLYTICS_ANALYSIS_WORKERS", "3")
	t.Setenv("KARTLYTICS_REPORT_FORMAT", "json")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 7000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.Equal(t, "json", cfg.Report.Format)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "tolerance", content: "analysis:\n  tolerance: 0\n", wantErr: config.ErrInvalidTolerance},
		{name: "workers", content: "analysis:\n  workers: -1\n", wantErr: config.ErrInvalidWorkers},
		{name: "outliers", content: "stats:\n  outlier_fraction: 1\n", wantErr: config.ErrInvalidOutlierFraction},
		{name: "format", content: "report:\n  format: xlsx\n", wantErr: config.ErrInvalidReportFormat},
		{name: "theme", content: "report:\n  theme: neon\n", wantErr: config.ErrInvalidTheme},
		{name: "port", content: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{name: "body size", content: "server:\n  max_body_size: lots\n", wantErr: config.ErrInvalidBodySize},
		{name: "cache size", content: "server:\n  cache_size: plenty\n", wantErr: config.ErrInvalidCacheSize},
		{name: "timeout", content: "server:\n  read_timeout: 0s\n", wantErr: config.ErrInvalidTimeout},
		{name: "log level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "log format", content: "logging:\n  format: xml\n", wantErr: config.ErrInvalidLogFormat},
		{name: "sample ratio", content: "telemetry:\n  sample_ratio: 2\n", wantErr: config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Report.Format = "pdf"

	err := cfg.Validate()
	require.ErrorIs(t, err, config.ErrInvalidPort)
	require.ErrorIs(t, err, config.ErrInvalidReportFormat)
}

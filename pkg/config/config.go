// Package config loads kartlytics settings from a YAML file, KARTLYTICS_*
// environment variables and built-in defaults, in increasing priority order
// of defaults, file and environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

const (
	configName = ".kartlytics"
	configType = "yaml"
	envPrefix  = "KARTLYTICS"
	maxPort    = 65535
)

// Sentinel validation errors.
var (
	ErrInvalidTolerance       = errors.New("analysis tolerance must be positive")
	ErrInvalidWorkers         = errors.New("analysis workers must not be negative")
	ErrInvalidOutlierFraction = errors.New("outlier fraction must be in [0, 1)")
	ErrInvalidReportFormat    = errors.New("unknown report format")
	ErrInvalidTheme           = errors.New("unknown report theme")
	ErrInvalidPort            = errors.New("invalid server port")
	ErrInvalidBodySize        = errors.New("invalid server max body size")
	ErrInvalidCacheSize       = errors.New("invalid server cache size")
	ErrInvalidTimeout         = errors.New("server timeouts must be positive")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidLogFormat       = errors.New("invalid log format")
	ErrInvalidSampleRatio     = errors.New("trace sample ratio must be in [0, 1]")
)

// ReportFormats lists the accepted values of report.format.
var ReportFormats = []string{"json", "yaml", "text", "plot"}

// Config holds all kartlytics settings.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Report    ReportConfig    `mapstructure:"report"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AnalysisConfig tunes the interpolation engine.
type AnalysisConfig struct {
	Tolerance float64 `mapstructure:"tolerance"`
	Workers   int     `mapstructure:"workers"`
}

// StatsConfig tunes the lap time summaries.
type StatsConfig struct {
	OutlierFraction float64 `mapstructure:"outlier_fraction"`
}

// ReportConfig selects how results are presented.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	Theme  string `mapstructure:"theme"`
	Title  string `mapstructure:"title"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MaxBodySize  string        `mapstructure:"max_body_size"`
	CacheSize    string        `mapstructure:"cache_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
// An empty endpoint disables OTLP export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxBodyBytes parses MaxBodySize ("8MB", "512KiB").
func (s ServerConfig) MaxBodyBytes() (int64, error) {
	size, err := humanize.ParseBytes(s.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBodySize, s.MaxBodySize, err)
	}

	if size == 0 || size > uint64(1<<62) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBodySize, s.MaxBodySize)
	}

	return int64(size), nil
}

// CacheBytes parses CacheSize. Zero disables the response cache.
func (s ServerConfig) CacheBytes() (int64, error) {
	size, err := humanize.ParseBytes(s.CacheSize)
	if err != nil || size > uint64(1<<62) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, s.CacheSize)
	}

	return int64(size), nil
}

// SlogLevel converts the configured level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// LoadConfig loads configuration from configPath, or from .kartlytics.yaml in
// the working directory or $HOME when configPath is empty. A missing default
// file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")

		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var cfg Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&cfg)

	return &cfg
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("analysis.tolerance", DefaultTolerance)
	viperCfg.SetDefault("analysis.workers", DefaultWorkers)

	viperCfg.SetDefault("stats.outlier_fraction", DefaultOutlierFraction)

	viperCfg.SetDefault("report.format", DefaultReportFormat)
	viperCfg.SetDefault("report.theme", DefaultReportTheme)
	viperCfg.SetDefault("report.title", DefaultReportTitle)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.max_body_size", DefaultServerMaxBodySize)
	viperCfg.SetDefault("server.cache_size", DefaultServerCacheSize)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if !(c.Analysis.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidTolerance, c.Analysis.Tolerance))
	}

	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Analysis.Workers))
	}

	if !(c.Stats.OutlierFraction >= 0 && c.Stats.OutlierFraction < 1) {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidOutlierFraction, c.Stats.OutlierFraction))
	}

	if !slices.Contains(ReportFormats, c.Report.Format) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidReportFormat, c.Report.Format))
	}

	if c.Report.Theme != "dark" && c.Report.Theme != "light" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTheme, c.Report.Theme))
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port))
	}

	_, sizeErr := c.Server.MaxBodyBytes()
	if sizeErr != nil {
		errs = append(errs, sizeErr)
	}

	_, cacheErr := c.Server.CacheBytes()
	if cacheErr != nil {
		errs = append(errs, cacheErr)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: read %s, write %s",
			ErrInvalidTimeout, c.Server.ReadTimeout, c.Server.WriteTimeout))
	}

	_, levelErr := c.Logging.SlogLevel()
	if levelErr != nil {
		errs = append(errs, levelErr)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}

	if !(c.Telemetry.SampleRatio >= 0 && c.Telemetry.SampleRatio <= 1) {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio))
	}

	return errors.Join(errs...)
}

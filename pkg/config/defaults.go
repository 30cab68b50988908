package config

import "time"

// Analysis defaults.
const (
	DefaultTolerance = 1e-6
	DefaultWorkers   = 0
)

// Stats defaults.
const (
	DefaultOutlierFraction = 0.1
)

// Report defaults.
const (
	DefaultReportFormat = "text"
	DefaultReportTheme  = "dark"
	DefaultReportTitle  = "Race analysis"
)

// Server defaults.
const (
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = 8080
	DefaultServerMaxBodySize  = "8MB"
	DefaultServerCacheSize    = "16MB"
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 60 * time.Second
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
)

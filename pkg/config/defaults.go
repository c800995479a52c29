package config

// Compile defaults.
const (
	DefaultCacheSize      = "16MB"
	DefaultWorkers        = 0
	DefaultArtifactFormat = "json"
	DefaultArtifactDir    = "."
	DefaultCompileTimeout = "30s"
)

// Output defaults.
const (
	DefaultOutputFormat = FormatText
	DefaultOutputColor  = ColorAuto
)

// Logging defaults.
const (
	DefaultLogLevel = "warn"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultServiceName  = "exprgraph"
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 0.0
)

// Package config loads exprgraph configuration from a YAML file and
// EXPRGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/exprgraph/pkg/persist"
	"github.com/Sumatoshi-tech/exprgraph/pkg/safeconv"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// cacheDisabled is the cache_size value that turns the artifact cache off.
const cacheDisabled = "off"

// envPrefix is the environment variable prefix.
const envPrefix = "EXPRGRAPH"

// Sentinel validation errors.
var (
	ErrInvalidWorkers        = errors.New("compile workers must not be negative")
	ErrInvalidCacheSize      = errors.New("invalid compile cache size")
	ErrInvalidArtifactFormat = errors.New("invalid artifact format")
	ErrInvalidTimeout        = errors.New("compile timeout must be positive")
	ErrInvalidOutputFormat   = errors.New("invalid output format")
	ErrInvalidColor          = errors.New("invalid color mode")
	ErrInvalidLogLevel       = errors.New("invalid log level")
	ErrInvalidSampleRatio    = errors.New("sample ratio must be between 0 and 1")
)

// Config holds all configuration for exprgraph.
type Config struct {
	Compile   CompileConfig   `mapstructure:"compile"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// CompileConfig holds compile service configuration.
type CompileConfig struct {
	// CacheSize is a human-readable byte budget ("16MB") or "off".
	CacheSize      string        `mapstructure:"cache_size"`
	ArtifactFormat string        `mapstructure:"artifact_format"`
	ArtifactDir    string        `mapstructure:"artifact_dir"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Workers        int           `mapstructure:"workers"`
}

// OutputConfig holds CLI output configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	Environment  string  `mapstructure:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	MetricsAddr  string  `mapstructure:"metrics_addr"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. An
// empty configPath searches ./exprgraph.yaml and $HOME/.exprgraph/; a
// missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("exprgraph")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.exprgraph")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("compile.cache_size", DefaultCacheSize)
	viperCfg.SetDefault("compile.workers", DefaultWorkers)
	viperCfg.SetDefault("compile.artifact_format", DefaultArtifactFormat)
	viperCfg.SetDefault("compile.artifact_dir", DefaultArtifactDir)
	viperCfg.SetDefault("compile.timeout", DefaultCompileTimeout)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.color", DefaultOutputColor)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.service_name", DefaultServiceName)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.metrics_addr", "")
}

// Validate checks every section.
func (config *Config) Validate() error {
	if config.Compile.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Compile.Workers)
	}

	_, err := config.Compile.CacheBytes()
	if err != nil {
		return err
	}

	if !slices.Contains(persist.Formats(), strings.ToLower(config.Compile.ArtifactFormat)) {
		return fmt.Errorf("%w: %q", ErrInvalidArtifactFormat, config.Compile.ArtifactFormat)
	}

	if config.Compile.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, config.Compile.Timeout)
	}

	if config.Output.Format != FormatText && config.Output.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, config.Output.Format)
	}

	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, config.Output.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, config.Output.Color)
	}

	_, err = config.Logging.SlogLevel()
	if err != nil {
		return err
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

// CacheBytes parses CacheSize. It returns -1 when the cache is off.
func (compile CompileConfig) CacheBytes() (int64, error) {
	trimmed := strings.TrimSpace(compile.CacheSize)
	if strings.EqualFold(trimmed, cacheDisabled) {
		return -1, nil
	}

	size, err := humanize.ParseBytes(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCacheSize, compile.CacheSize, err)
	}

	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, compile.CacheSize)
	}

	return safeconv.MustUint64ToInt64(size), nil
}

// SlogLevel parses Level as an slog level name (debug, info, warn, error).
func (logging LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(logging.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, logging.Level)
	}

	return level, nil
}

package config

import (
	"github.com/gridframe/gridframe/pkg/compression"
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/perunit"
)

// Config is the configuration of a gridframe session.
type Config struct {
	// Units selects raw or per-unit values
	Units UnitsConfig `yaml:"units" json:"units"`

	// Dataframe bounds materializations
	Dataframe DataframeConfig `yaml:"dataframe" json:"dataframe"`

	// Export controls file output
	Export ExportConfig `yaml:"export" json:"export"`

	// Observability settings for logging, metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// UnitsConfig is the per-unit switch and its base.
type UnitsConfig struct {
	// PerUnit converts every quantity family when true
	PerUnit bool `yaml:"per_unit" json:"per_unit"`
	// NominalApparentPower is the base power in MVA
	NominalApparentPower float64 `yaml:"nominal_apparent_power" json:"nominal_apparent_power"`
}

// DataframeConfig contains materialization limits.
type DataframeConfig struct {
	// MaxPropertyColumns bounds the property columns of one materialization
	MaxPropertyColumns int `yaml:"max_property_columns" json:"max_property_columns"`
	// SkipMissingRows skips selection rows whose key does not resolve
	SkipMissingRows bool `yaml:"skip_missing_rows" json:"skip_missing_rows"`
}

// ExportConfig contains file output settings.
type ExportConfig struct {
	// Format is csv, json or arrow
	Format string `yaml:"format" json:"format"`
	// Compression is a compression algorithm name, empty for none
	Compression string `yaml:"compression" json:"compression"`
	// Level is the compression level, 1 (fastest) to 9 (best)
	Level int `yaml:"level" json:"level"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets the minimum log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
	// Development enables colored levels and error stack traces
	Development bool `yaml:"development" json:"development"`
	// EnableMetrics records Prometheus metrics
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing installs the OpenTelemetry tracer
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate is the fraction of calls traced
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// NewDefault returns a configuration with raw units on a 100 MVA base.
//
// Example:
//
//	cfg := config.NewDefault()
//	cfg.Units.PerUnit = true
func NewDefault() *Config {
	return &Config{
		Units: UnitsConfig{
			PerUnit:              false,
			NominalApparentPower: perunit.DefaultNominalApparentPower,
		},
		Dataframe: DataframeConfig{
			MaxPropertyColumns: dataframe.DefaultMaxPropertyColumns,
			SkipMissingRows:    false,
		},
		Export: ExportConfig{
			Format:      "csv",
			Compression: "none",
			Level:       int(compression.Default),
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogEncoding:       "json",
			Development:       false,
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Units.NominalApparentPower <= 0 {
		return errors.New(errors.ErrorTypeConfig, "nominal_apparent_power must be positive")
	}
	if c.Dataframe.MaxPropertyColumns < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_property_columns cannot be negative")
	}
	switch c.Export.Format {
	case "csv", "json", "arrow":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported export format %q", c.Export.Format)
	}
	if _, err := compression.Parse(c.Export.Compression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid export compression")
	}
	if c.Export.Level < int(compression.Fastest) || c.Export.Level > int(compression.Best) {
		return errors.Newf(errors.ErrorTypeConfig, "compression level %d out of range 1-9", c.Export.Level)
	}
	switch c.Observability.LogEncoding {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported log encoding %q", c.Observability.LogEncoding)
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing_sample_rate must be within [0, 1]")
	}
	return nil
}

// Context builds the per-call unit context.
func (u UnitsConfig) Context() perunit.Context {
	return perunit.NewContext(u.PerUnit, u.NominalApparentPower)
}

// Apply copies the dataframe limits into f.
func (d DataframeConfig) Apply(f dataframe.Filter) dataframe.Filter {
	f.MaxPropertyColumns = d.MaxPropertyColumns
	f.SkipMissingRows = d.SkipMissingRows
	return f
}

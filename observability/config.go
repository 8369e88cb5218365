package observability

import (
	"fmt"
	"time"
)

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	// Enabled turns on span export. Spans are no-ops when disabled.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port (default: "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure"`
	// SampleRate is the fraction of traces kept, 0 to 1 (default: 1).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *TracingConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Validate checks the sample rate range.
func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	return nil
}

// MetricsConfig configures the OTLP metric exporter.
type MetricsConfig struct {
	// Enabled turns on metric export. Instruments still record when
	// disabled, nothing is pushed.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP collector host:port (default: "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure disables TLS to the collector.
	Insecure bool `mapstructure:"insecure"`
	// Interval is the push period (default: "15s").
	Interval string `mapstructure:"interval"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *MetricsConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Interval == "" {
		c.Interval = "15s"
	}
}

// Validate checks the export interval.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return fmt.Errorf("metrics.interval must be a positive duration (got: %q)", c.Interval)
	}
	return nil
}

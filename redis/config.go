package redis

import (
	"fmt"
	"time"
)

// Config holds Redis connection configuration.
type Config struct {
	// Enabled turns the token cache on.
	Enabled bool `mapstructure:"enabled"`

	// Addr is the server address, host:port.
	Addr string `mapstructure:"addr"`

	// Password is the server password.
	Password string `mapstructure:"password"`

	// DB is the database number.
	DB int `mapstructure:"db"`

	// KeyPrefix namespaces every cache key (default: "authd").
	KeyPrefix string `mapstructure:"key_prefix"`

	// PoolSize is the maximum number of socket connections (default: 10).
	PoolSize int `mapstructure:"pool_size"`

	// MinIdleConns is the minimum number of idle connections (default: 2).
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries per command (default: 3).
	MaxRetries int `mapstructure:"max_retries"`

	// DialTimeout for new connections (default: "5s").
	DialTimeout string `mapstructure:"dial_timeout"`

	// ReadTimeout for socket reads (default: "3s").
	ReadTimeout string `mapstructure:"read_timeout"`

	// WriteTimeout for socket writes (default: "3s").
	WriteTimeout string `mapstructure:"write_timeout"`

	// PoolTimeout is how long a command waits for a free connection (default: "4s").
	PoolTimeout string `mapstructure:"pool_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "authd"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.PoolTimeout == "" {
		c.PoolTimeout = "4s"
	}
}

// Validate checks required fields when the cache is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("redis.pool_size must be > 0")
	}
	for _, d := range []struct{ name, value string }{
		{"dial_timeout", c.DialTimeout},
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"pool_timeout", c.PoolTimeout},
	} {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid redis.%s %q: %w", d.name, d.value, err)
		}
	}
	return nil
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

package main

import (
	"fmt"

	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/config"
	"github.com/kbukum/authd/database"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/redis"
	"github.com/kbukum/authd/server"
)

// Config is the full authd configuration, loaded once at startup.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server   server.Config               `yaml:"server" mapstructure:"server"`
	Database database.Config             `yaml:"database" mapstructure:"database"`
	Redis    redis.Config                `yaml:"redis" mapstructure:"redis"`
	Tracing  observability.TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics  observability.MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Password password.Config             `yaml:"password" mapstructure:"password"`
	OAuth    oauth.Config                `yaml:"oauth" mapstructure:"oauth"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Server.WithholdErrors = c.IsProduction()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	c.Metrics.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.OAuth.ApplyDefaults()
}

// Validate checks every section. Any failure is fatal at startup.
func (c *Config) Validate() error {
	for _, s := range []struct {
		name     string
		validate func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"redis", c.Redis.Validate},
		{"tracing", c.Tracing.Validate},
		{"metrics", c.Metrics.Validate},
		{"password", c.Password.Validate},
		{"oauth", c.OAuth.Validate},
	} {
		if err := s.validate(); err != nil {
			return fmt.Errorf("%s config: %w", s.name, err)
		}
	}
	return nil
}

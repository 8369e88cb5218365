package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/authd/logger"
)

// Environments accepted in ServiceConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig contains the fields every service needs.
// Embed it with `mapstructure:",squash"` in the service's own config.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	valid := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(valid, c.Environment) {
		return fmt.Errorf("environment must be one of %v (got: %s)", valid, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// IsProduction reports whether error details must be withheld from clients.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetServiceConfig returns the base section of a config embedding it.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

package bootstrap

import (
	"github.com/kbukum/authd/config"
)

// Config is the constraint for application configuration types. A pointer
// to a struct embedding config.ServiceConfig with `mapstructure:",squash"`
// satisfies it once the struct defines ApplyDefaults and Validate for its
// own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

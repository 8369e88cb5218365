package password

import (
	"fmt"
	"math"
	"time"
)

// Config configures the PBKDF2 hasher and the pool that runs it.
// HashLength, SaltLength and Iterations have no defaults.
type Config struct {
	// HashLength is the derived key length in bytes.
	HashLength int `yaml:"hash_length" mapstructure:"hash_length"`
	// SaltLength is the random salt length in bytes.
	SaltLength int `yaml:"salt_length" mapstructure:"salt_length"`
	// Iterations is the PBKDF2 iteration count.
	Iterations int `yaml:"iterations" mapstructure:"iterations"`

	// MaxConcurrent bounds concurrent derivations (default: 4).
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// MaxWait is how long a caller waits for a free slot (default: 5s).
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// ApplyDefaults sets defaults for the pool settings only.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
	if c.MaxWait == 0 {
		c.MaxWait = 5 * time.Second
	}
}

// Validate checks that every derivation parameter is present and positive.
func (c *Config) Validate() error {
	for _, p := range []struct {
		name  string
		value int
	}{
		{"password.hash_length", c.HashLength},
		{"password.salt_length", c.SaltLength},
		{"password.iterations", c.Iterations},
	} {
		if p.value <= 0 {
			return fmt.Errorf("%s is required and must be > 0 (got: %d)", p.name, p.value)
		}
		if int64(p.value) > math.MaxUint32 {
			return fmt.Errorf("%s must fit in 32 bits (got: %d)", p.name, p.value)
		}
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("password.max_concurrent must be >= 0 (got: %d)", c.MaxConcurrent)
	}
	return nil
}

package password

import (
	"context"

	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/resilience"
)

// Pool runs a Hasher behind a bulkhead so only MaxConcurrent derivations
// are in flight. Callers that cannot get a slot within MaxWait receive a
// ServiceUnavailable error.
type Pool struct {
	hasher   Hasher
	bulkhead *resilience.Bulkhead
}

// NewPool wraps h. cfg supplies the pool settings.
func NewPool(h Hasher, cfg Config) *Pool {
	cfg.ApplyDefaults()
	log := logger.WithComponent("password")
	return &Pool{
		hasher: h,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "password-hasher",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
			OnReject: func(name string, err error) {
				log.Warn("hash request rejected", logger.Fields("bulkhead", name, logger.FieldError, err.Error()))
			},
		}),
	}
}

// Hash derives a digest for plain.
func (p *Pool) Hash(ctx context.Context, plain string) (string, error) {
	digest, err := resilience.ExecuteWithResult(ctx, p.bulkhead, func() (string, error) {
		return p.hasher.Hash(plain)
	})
	return digest, translate(err)
}

// Verify reports whether plain matches digest.
func (p *Pool) Verify(ctx context.Context, plain, digest string) (bool, error) {
	ok, err := resilience.ExecuteWithResult(ctx, p.bulkhead, func() (bool, error) {
		return p.hasher.Verify(plain, digest)
	})
	return ok, translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsRejection(err) {
		return errors.ServiceUnavailable("password hasher").WithCause(err)
	}
	return err
}

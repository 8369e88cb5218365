package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/store"
)

// Clock returns the current time.
type Clock func() time.Time

// PasswordHasher derives and checks password digests. password.Pool
// implements it.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, digest string) (bool, error)
}

// Service implements the authorization core on top of a store.
type Service struct {
	cfg     Config
	store   *store.Store
	hasher  PasswordHasher
	cache   GrantCache
	now     Clock
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Service) { s.now = c }
}

// WithCache sets the token lookup cache.
func WithCache(c GrantCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics sets the instruments that count issued and revoked secrets.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService validates cfg and creates a Service.
func NewService(cfg Config, st *store.Store, hasher PasswordHasher, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	if st == nil || hasher == nil {
		return nil, fmt.Errorf("oauth: store and hasher are required")
	}
	s := &Service{
		cfg:     cfg,
		store:   st,
		hasher:  hasher,
		cache:   NopCache{},
		now:     time.Now,
		log:     logger.WithComponent("oauth"),
		metrics: observability.NopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// newLifetime starts a lifetime of ttl milliseconds at the service clock.
func (s *Service) newLifetime(ttl int64) entity.Lifetime {
	return entity.NewLifetime(s.now(), ttl)
}

// unauthorizedIfMissing turns NotFound into Unauthorized so credential
// lookups never reveal which part failed.
func unauthorizedIfMissing(err error) error {
	if errors.HasCode(err, errors.ErrCodeNotFound) {
		return errors.Unauthorized()
	}
	return err
}

// secretError wraps a random source failure.
func secretError(err error) error {
	return errors.Internal(fmt.Errorf("generate secret: %w", err))
}

// revocationGrace keeps a tombstone past the token's own expiry.
const revocationGrace = time.Minute

// revoke tombstones the cached grants of tokens. It runs before the rows
// change; on failure the caller aborts with ServiceUnavailable and changes
// nothing.
func (s *Service) revoke(ctx context.Context, tokens []entity.Token) error {
	now := s.now()
	revs := make([]Revocation, 0, len(tokens))
	for i := range tokens {
		left := tokens[i].ExpiresAt().Sub(now)
		if left <= 0 {
			continue
		}
		revs = append(revs, Revocation{Secret: tokens[i].Token, TTL: left + revocationGrace})
	}
	if len(revs) == 0 {
		return nil
	}
	if err := s.cache.Revoke(ctx, revs...); err != nil {
		s.log.Error("token cache revocation failed", logger.Fields(logger.FieldError, err.Error(), "tokens", len(revs)))
		return errors.ServiceUnavailable("token cache").WithCause(err)
	}
	return nil
}

// recordIssued counts the tokens of a committed pair.
func (s *Service) recordIssued(ctx context.Context, pair *TokenPair) {
	for _, t := range []*entity.Token{pair.Access, pair.Refresh} {
		if t != nil {
			s.metrics.TokenIssued(ctx, t.TokenType)
		}
	}
}

// tokensOf lists every token of regs.
func (s *Service) tokensOf(ctx context.Context, regs ...entity.Registration) ([]entity.Token, error) {
	var all []entity.Token
	for _, reg := range regs {
		tokens, err := s.store.Tokens.ListByRegistration(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, tokens...)
	}
	return all, nil
}

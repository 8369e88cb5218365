package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/redis"
)

// TokenGrant is what request authentication needs to know about a token:
// who it belongs to and which origins may present it. It carries no
// client secrets and never the token itself.
type TokenGrant struct {
	TokenID        uuid.UUID       `json:"token_id"`
	TokenType      string          `json:"token_type"`
	RegistrationID uuid.UUID       `json:"registration_id"`
	UserInfoID     uuid.UUID       `json:"user_info_id"`
	ClientInfoID   uuid.UUID       `json:"client_info_id"`
	ClientID       string          `json:"client_id"`
	UserClassifier string          `json:"user_classifier"`
	CallbackURLs   []string        `json:"callback_urls"`
	Lifetime       entity.Lifetime `json:"lifetime"`
}

// NewTokenGrant snapshots a token loaded with its registration, client,
// callbacks and user.
func NewTokenGrant(t *entity.Token) *TokenGrant {
	g := &TokenGrant{
		TokenID:        t.ID,
		TokenType:      t.TokenType,
		RegistrationID: t.RegistrationID,
		Lifetime:       t.Lifetime,
	}
	if reg := t.Registration; reg != nil {
		g.UserInfoID = reg.UserInfoID
		g.ClientInfoID = reg.ClientInfoID
		g.UserClassifier = reg.UserClassifier
		if c := reg.ClientInfo; c != nil {
			g.ClientID = c.ClientID
			g.CallbackURLs = callbackURLs(c)
		}
	}
	return g
}

// IsExpired reports whether the token is expired at now.
func (g *TokenGrant) IsExpired(now time.Time) bool {
	return g.Lifetime.IsExpired(now)
}

func callbackURLs(c *entity.ClientInfo) []string {
	urls := make([]string, 0, len(c.CallbackURLs))
	for _, cb := range c.CallbackURLs {
		urls = append(urls, cb.URL)
	}
	return urls
}

// Revocation shadows the cached grant of one token secret for TTL.
type Revocation struct {
	Secret string
	TTL    time.Duration
}

// GrantCache caches TokenGrants by token secret. A miss is (nil, nil).
// Once Revoke returns, Get misses and Put is refused for the revoked
// secrets until their revocation lapses.
type GrantCache interface {
	Get(ctx context.Context, secret string) (*TokenGrant, error)
	Put(ctx context.Context, secret string, g *TokenGrant, ttl time.Duration) error
	Revoke(ctx context.Context, revocations ...Revocation) error
}

// NopCache is the GrantCache used when Redis is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*TokenGrant, error) { return nil, nil }

func (NopCache) Put(context.Context, string, *TokenGrant, time.Duration) error { return nil }

func (NopCache) Revoke(context.Context, ...Revocation) error { return nil }

type tombstone struct{}

// RedisCache keeps grants in Redis under the SHA-256 of the token, next
// to a tombstone per revoked token that shadows them.
type RedisCache struct {
	grants *redis.TypedStore[TokenGrant]
	marks  *redis.TypedStore[tombstone]
}

// NewRedisCache creates a RedisCache on client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		grants: redis.NewTypedStore[TokenGrant](client, "grant"),
		marks:  redis.NewTypedStore[tombstone](client, "revoked"),
	}
}

func (c *RedisCache) Get(ctx context.Context, secret string) (*TokenGrant, error) {
	key := cacheKey(secret)
	return c.grants.LoadUnless(ctx, key, c.marks, key)
}

// Put stores g unless the secret has been revoked. A refused write is not
// an error.
func (c *RedisCache) Put(ctx context.Context, secret string, g *TokenGrant, ttl time.Duration) error {
	key := cacheKey(secret)
	_, err := c.grants.SaveUnless(ctx, key, g, ttl, c.marks, key)
	return err
}

// Revoke writes the tombstones in one transaction, then drops the grants.
// The drop is best effort: tombstoned grants are never served.
func (c *RedisCache) Revoke(ctx context.Context, revocations ...Revocation) error {
	if len(revocations) == 0 {
		return nil
	}
	entries := make([]redis.Entry[tombstone], len(revocations))
	keys := make([]string, len(revocations))
	for i, r := range revocations {
		keys[i] = cacheKey(r.Secret)
		entries[i] = redis.Entry[tombstone]{Key: keys[i], Value: &tombstone{}, TTL: r.TTL}
	}
	if err := c.marks.SaveMany(ctx, entries); err != nil {
		return err
	}
	_ = c.grants.Delete(ctx, keys...)
	return nil
}

func cacheKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

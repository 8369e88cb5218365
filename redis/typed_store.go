package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Keyspace maps a store-relative key to its Redis key.
type Keyspace interface {
	FullKey(key string) string
}

// TypedStore keeps JSON-encoded values of type V under prefix:key.
type TypedStore[V any] struct {
	client *Client
	prefix string
}

// NewTypedStore creates a TypedStore. prefix is joined to the client's
// KeyPrefix.
func NewTypedStore[V any](client *Client, prefix string) *TypedStore[V] {
	if p := client.KeyPrefix(); p != "" {
		prefix = p + ":" + prefix
	}
	return &TypedStore[V]{client: client, prefix: prefix}
}

// FullKey returns the Redis key that holds key.
func (s *TypedStore[V]) FullKey(key string) string {
	return s.prefix + ":" + key
}

// Load returns the value at key, or nil without error when it is missing.
func (s *TypedStore[V]) Load(ctx context.Context, key string) (*V, error) {
	raw, err := s.client.Get(ctx, s.FullKey(key))
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("typed store load: %w", err)
	}
	var v V
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("typed store unmarshal: %w", err)
	}
	return &v, nil
}

// Save stores v at key for ttl.
func (s *TypedStore[V]) Save(ctx context.Context, key string, v *V, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("typed store marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.FullKey(key), data, ttl); err != nil {
		return fmt.Errorf("typed store save: %w", err)
	}
	return nil
}

// Delete removes keys.
func (s *TypedStore[V]) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.FullKey(k)
	}
	if err := s.client.Del(ctx, full...); err != nil {
		return fmt.Errorf("typed store delete: %w", err)
	}
	return nil
}

// LoadUnless is Load that reports a miss while guard holds guardKey.
// Both keys are read in one round trip.
func (s *TypedStore[V]) LoadUnless(ctx context.Context, key string, guard Keyspace, guardKey string) (*V, error) {
	vals, err := s.client.MGet(ctx, s.FullKey(key), guard.FullKey(guardKey))
	if err != nil {
		return nil, fmt.Errorf("typed store load: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] != nil {
		return nil, nil
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, fmt.Errorf("typed store load: unexpected reply %T", vals[0])
	}
	var v V
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("typed store unmarshal: %w", err)
	}
	return &v, nil
}

var saveUnlessScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// SaveUnless stores v at key for ttl unless guard holds guardKey. The
// check and the write are one atomic script. It reports whether v was
// stored.
func (s *TypedStore[V]) SaveUnless(ctx context.Context, key string, v *V, ttl time.Duration, guard Keyspace, guardKey string) (bool, error) {
	ms := ttl.Milliseconds()
	if ms <= 0 {
		return false, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("typed store marshal: %w", err)
	}
	res, err := s.client.Run(ctx, saveUnlessScript,
		[]string{s.FullKey(key), guard.FullKey(guardKey)}, string(data), ms)
	if err != nil {
		return false, fmt.Errorf("typed store save: %w", err)
	}
	n, _ := res.(int64)
	return n == 1, nil
}

// Entry is one value for SaveMany.
type Entry[V any] struct {
	Key   string
	Value *V
	TTL   time.Duration
}

// SaveMany stores every entry in one MULTI/EXEC: all of them or none.
func (s *TypedStore[V]) SaveMany(ctx context.Context, entries []Entry[V]) error {
	if len(entries) == 0 {
		return nil
	}
	data := make([][]byte, len(entries))
	for i, e := range entries {
		b, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("typed store marshal: %w", err)
		}
		data[i] = b
	}
	err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for i, e := range entries {
			p.Set(ctx, s.FullKey(e.Key), data[i], e.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("typed store save many: %w", err)
	}
	return nil
}

// Package redis wraps go-redis for authd's token lookup cache.
//
// Client carries the pool settings from Config, Component plugs it into
// the component registry, and TypedStore keeps JSON values under a key
// prefix with a per-entry TTL:
//
//	grants := redis.NewTypedStore[oauth.TokenGrant](client, "authd:grant")
//	err := grants.Save(ctx, key, &grant, ttl)
//
// Redis is optional. With redis.enabled false the component is not
// registered and lookups go straight to the database.
package redis

// Package oauth is authd's authorization core.
//
// Service owns the client registry, the registration ledger, grant-code
// issue and redemption, and token issue, refresh, lookup and bulk expiry.
// Every secret it mints is an opaque random string persisted behind a
// unique constraint; lifetimes are checked against an injected Clock so
// tests can place "now" exactly on an expiry boundary.
//
// Token lookups used by request authentication go through a GrantCache.
// With Redis enabled the cache keeps a TokenGrant snapshot under the
// SHA-256 of the token for the token's remaining life; every operation
// that expires or deletes tokens drops the matching entries.
package oauth

// Package component manages the lifecycle of authd's infrastructure:
// the database, the redis cache, and the HTTP server.
//
// Components are started in registration order and stopped in reverse, so
// register dependencies first. HealthAll feeds the /health endpoint.
package component

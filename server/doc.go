// Package server provides authd's HTTP server: a Gin engine wrapped in the
// middleware stack and served with HTTP/2 cleartext support.
//
// # Middleware
//
// Built-in middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with the stack logged
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: one line per request, level by status
//   - CORS: allowed origins, methods and headers
//   - BodySizeLimit: request body cap
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: build information
//
// RespondWithError turns any error into the JSON error envelope. With
// Config.WithholdErrors set, validation and internal messages are replaced
// by generic ones.
package server

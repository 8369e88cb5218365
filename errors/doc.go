// Package errors provides the error taxonomy of the authorization server.
//
// Every failure that reaches an HTTP response is an *AppError carrying a
// machine-readable code and the HTTP status it maps to. Credential failures
// all collapse into a single Unauthorized error whose message never says why
// the credential was rejected.
package errors

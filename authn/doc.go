// Package authn resolves the Authorization header of an inbound request
// into a Principal.
//
// Two schemes are understood, matched case-insensitively:
//
//	Authorization: Bearer <token>     user principal
//	Authorization: AdminKey <key>     client admin principal
//
// A credential is only accepted when the request Origin matches one of the
// owning client's callback URLs by scheme and host. Every rejection is the
// same Unauthorized error; a header that is not "<scheme> <credential>" is a
// BadRequest.
//
// RequireAuth wraps the resolver as gin middleware and stores the Principal
// in the request context, from which handlers read it with FromContext.
package authn

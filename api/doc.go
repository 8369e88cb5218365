// Package api exposes the authorization server over HTTP.
//
//	POST   /v1/client/register
//	GET    /v1/oauth/authorize
//	POST   /v1/oauth/token
//	POST   /v1/user/signup
//	POST   /v1/user/login
//	GET    /v1/user/me
//	PUT    /v1/user/me
//	DELETE /v1/user/signout
//	GET    /v1/user/token_info
//	POST   /v1/user/logout
//	POST   /v1/user/unlink
//
// Handlers validate request bodies with the validation package, call the
// oauth service and render entities through the DTOs in dto.go.
package api

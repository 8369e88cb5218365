package authn

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/server"
)

// RequireAuth rejects requests that do not resolve to a principal accepted
// by as. The principal is stored in the request context.
func RequireAuth(r *Resolver, as Requirement, tokenType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := r.Resolve(c.Request.Context(), c.GetHeader("Authorization"), c.GetHeader("Origin"), as, tokenType)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

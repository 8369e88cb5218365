package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/authn"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/server"
	"github.com/kbukum/authd/validation"
)

// Handler serves the /v1 API.
type Handler struct {
	svc      *oauth.Service
	resolver *authn.Resolver
	log      *logger.Logger
}

// NewHandler returns a Handler backed by svc and resolver.
func NewHandler(svc *oauth.Service, resolver *authn.Resolver, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, resolver: resolver, log: log.WithComponent("api")}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")

	client := v1.Group("/client")
	client.POST("/register", h.registerClient)

	oauthGroup := v1.Group("/oauth")
	oauthGroup.GET("/authorize", h.authorize)
	oauthGroup.POST("/token", h.token)

	user := v1.Group("/user")
	asUser := authn.RequireAuth(h.resolver, authn.AsUser, entity.TokenTypeAccess)
	asAny := authn.RequireAuth(h.resolver, authn.AsAny, entity.TokenTypeAccess)
	user.POST("/signup", h.signup)
	user.POST("/login", h.login)
	user.GET("/me", asAny, h.me)
	user.PUT("/me", asUser, h.updateMe)
	user.DELETE("/signout", asUser, h.signout)
	user.GET("/token_info", asUser, h.tokenInfo)
	user.POST("/logout", asUser, h.logout)
	user.POST("/unlink", asAny, h.unlink)
}

// bind decodes the request into req and validates it. Bodies may be JSON
// or form encoded.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBind(req); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.BadRequest("Request body is required.")
		}
		return errors.BadRequest("Malformed request body.").WithCause(err)
	}
	return validation.Validate(req)
}

func principal(c *gin.Context) *authn.Principal {
	return authn.MustFromContext(c.Request.Context())
}

func respondOK(c *gin.Context) {
	c.Status(http.StatusOK)
}

func respondError(c *gin.Context, err error) {
	server.RespondWithError(c, err)
}

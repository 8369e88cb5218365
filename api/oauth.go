package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/server"
	"github.com/kbukum/authd/validation"
)

type authorizeQuery struct {
	ClientID    string `form:"client_id" json:"client_id" validate:"required"`
	RedirectURI string `form:"redirect_uri" json:"redirect_uri" validate:"required,weburl"`
	State       string `form:"state" json:"state"`
}

func (h *Handler) authorize(c *gin.Context) {
	var q authorizeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, errors.BadRequest("Malformed query.").WithCause(err))
		return
	}
	if err := validation.Validate(q); err != nil {
		respondError(c, err)
		return
	}

	location, err := h.svc.Authorize(c.Request.Context(), oauth.AuthorizeRequest{
		ClientID:    q.ClientID,
		RedirectURI: q.RedirectURI,
		State:       q.State,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	server.RespondRedirect(c, location)
}

type tokenRequest struct {
	Type         string `json:"type" form:"type" validate:"required,oneof=grant_code refresh_token"`
	ClientID     string `json:"client_id" form:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
	Code         string `json:"code" form:"code" validate:"required_if=Type grant_code"`
	RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required_if=Type refresh_token"`
}

func (h *Handler) token(c *gin.Context) {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.svc.Exchange(c.Request.Context(), oauth.TokenRequest{
		Type:         req.Type,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Code:         req.Code,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	if pair.Refresh == nil {
		server.RespondOK(c, tokenDTO(pair.Access))
		return
	}
	server.RespondOK(c, tokenPairDTO(pair))
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/server"
	"github.com/kbukum/authd/validation"
)

type registerClientRequest struct {
	Name            string `json:"name" form:"name" validate:"required,min=2"`
	Description     string `json:"description" form:"description"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	ManagementEmail string `json:"management_email" form:"management_email" validate:"required,email"`
	HomepageURL     string `json:"homepage_url" form:"homepage_url" validate:"required,weburl"`
	RedirectURIs    string `json:"redirect_uris" form:"redirect_uris" validate:"omitempty,urllist"`
}

func (h *Handler) registerClient(c *gin.Context) {
	var req registerClientRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	client, err := h.svc.RegisterClient(c.Request.Context(), oauth.ClientRegistration{
		Name:            req.Name,
		Description:     req.Description,
		Email:           req.Email,
		ManagementEmail: req.ManagementEmail,
		HomepageURL:     req.HomepageURL,
		RedirectURIs:    validation.SplitURLList(req.RedirectURIs),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	server.RespondCreated(c, registeredClientDTO(client))
}

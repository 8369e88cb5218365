package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authd/authn"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/server"
	"github.com/kbukum/authd/store"
	"github.com/kbukum/authd/validation"
)

const viaClassifier = "classifier"

type signupRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"username" form:"username" validate:"required,min=2"`
	Realname string `json:"realname" form:"realname" validate:"omitempty,min=2"`
	Password string `json:"password" form:"password" validate:"required"`
	Mobile   string `json:"mobile" form:"mobile" validate:"required,mobile"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.svc.SignupUser(c.Request.Context(), oauth.Signup{
		Email:    req.Email,
		Username: req.Username,
		Realname: req.Realname,
		Password: req.Password,
		Mobile:   req.Mobile,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	server.RespondCreated(c, createdUserDTO(user))
}

type loginRequest struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	Password    string `json:"password" form:"password" validate:"required"`
	ClientID    string `json:"client_id" form:"client_id" validate:"required"`
	RedirectURI string `json:"redirect_uri" form:"redirect_uri" validate:"required,weburl"`
	State       string `json:"state" form:"state"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}

	location, err := h.svc.Login(c.Request.Context(), oauth.LoginRequest{
		Email:       req.Email,
		Password:    req.Password,
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	server.RespondRedirect(c, location)
}

type targetQuery struct {
	Via      string `form:"via" json:"via"`
	TargetID string `form:"target_id" json:"target_id"`
}

func (q targetQuery) validate() error {
	return validation.New().
		Required("via", q.Via).
		OneOf("via", q.Via, viaClassifier).
		Required("target_id", q.TargetID).
		Validate()
}

func (h *Handler) me(c *gin.Context) {
	p := principal(c)
	switch p.Kind {
	case authn.KindUser:
		user, err := h.svc.Profile(c.Request.Context(), p.User.UserID())
		if err != nil {
			respondError(c, err)
			return
		}
		server.RespondOK(c, profileDTO(user))
	case authn.KindAdmin:
		var q targetQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondError(c, errors.BadRequest("Malformed query.").WithCause(err))
			return
		}
		if err := q.validate(); err != nil {
			respondError(c, err)
			return
		}
		user, err := h.svc.ProfileByClassifier(c.Request.Context(), p.Admin.Client.ID, q.TargetID)
		if err != nil {
			respondError(c, err)
			return
		}
		server.RespondOK(c, userDTO(user))
	default:
		respondError(c, errors.BadRequest("Unsupported principal."))
	}
}

type updateMeRequest struct {
	Realname *string `json:"realname" validate:"omitempty,min=1"`
	Mobile   *string `json:"mobile" validate:"omitempty,mobile"`
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	upd := store.UserUpdate{Realname: req.Realname, Mobile: req.Mobile}
	if upd.IsEmpty() {
		respondError(c, errors.BadRequest("No field to update."))
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), principal(c).User.UserID(), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	server.RespondOK(c, userDTO(user))
}

func (h *Handler) signout(c *gin.Context) {
	if err := h.svc.Signout(c.Request.Context(), principal(c).User.UserID()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *Handler) tokenInfo(c *gin.Context) {
	server.RespondOK(c, tokenInfoDTO(h.svc.TokenInfo(principal(c).User.Grant)))
}

func (h *Handler) logout(c *gin.Context) {
	if _, err := h.svc.ExpireAll(c.Request.Context(), principal(c).User.RegistrationID()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c)
}

func (h *Handler) unlink(c *gin.Context) {
	p := principal(c)
	switch p.Kind {
	case authn.KindUser:
		if err := h.svc.Unlink(c.Request.Context(), p.User.RegistrationID()); err != nil {
			respondError(c, err)
			return
		}
	case authn.KindAdmin:
		var req targetQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.BadRequest("Malformed request body.").WithCause(err))
			return
		}
		if err := req.validate(); err != nil {
			respondError(c, err)
			return
		}
		if err := h.svc.UnlinkByAdmin(c.Request.Context(), p.Admin.Client.ID, req.TargetID); err != nil {
			respondError(c, err)
			return
		}
	default:
		respondError(c, errors.BadRequest("Unsupported principal."))
		return
	}
	respondOK(c)
}

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/oauth"
)

// TokenDTO is a token as handed to clients.
type TokenDTO struct {
	TokenType string    `json:"token_type"`
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresIn int64     `json:"expires_in"`
}

// TokenPairDTO is the grant code exchange response.
type TokenPairDTO struct {
	AccessToken  TokenDTO `json:"access_token"`
	RefreshToken TokenDTO `json:"refresh_token"`
}

// TokenInfoDTO describes the presented access token.
type TokenInfoDTO struct {
	UserClassifier string `json:"user_classifier"`
	ClientID       string `json:"client_id"`
	ExpiresIn      int64  `json:"expires_in"`
}

// ClientDTO is the public view of a client.
type ClientDTO struct {
	ClientID        string `json:"client_id"`
	ApplicationName string `json:"application_name"`
	Description     string `json:"application_description,omitempty"`
	Email           string `json:"application_email"`
	HomepageURL     string `json:"application_homepage_url"`
	LogoURL         string `json:"application_logo,omitempty"`
}

// RegisteredClientDTO is returned once, at registration, with the
// credentials.
type RegisteredClientDTO struct {
	ClientDTO
	ClientSecret    string   `json:"client_secret,omitempty"`
	AdminKey        string   `json:"admin_key"`
	ManagementEmail string   `json:"client_mgmt_email"`
	RedirectURIs    []string `json:"redirect_uris"`
}

// RegistrationDTO is one of a user's client links.
type RegistrationDTO struct {
	UserClassifier                 string     `json:"user_classifier"`
	ProhibitAccessInformation      bool       `json:"prohibit_access_information"`
	AllowAccessPersonalInformation bool       `json:"allow_access_personal_information"`
	Client                         *ClientDTO `json:"client,omitempty"`
}

// UserDTO is a user profile. ID is only set for the account owner at
// signup; Registrations only on the owner's own profile.
type UserDTO struct {
	ID            *uuid.UUID        `json:"id,omitempty"`
	Username      string            `json:"username"`
	Email         string            `json:"email"`
	Mobile        string            `json:"mobile"`
	Realname      string            `json:"realname,omitempty"`
	Registrations []RegistrationDTO `json:"registrations,omitempty"`
}

func tokenDTO(t *entity.Token) TokenDTO {
	return TokenDTO{
		TokenType: t.TokenType,
		Token:     t.Token,
		IssuedAt:  t.IssuedAt,
		ExpiresIn: t.ExpiresIn,
	}
}

func tokenPairDTO(p *oauth.TokenPair) TokenPairDTO {
	return TokenPairDTO{AccessToken: tokenDTO(p.Access), RefreshToken: tokenDTO(p.Refresh)}
}

func tokenInfoDTO(i oauth.TokenInfo) TokenInfoDTO {
	return TokenInfoDTO{UserClassifier: i.UserClassifier, ClientID: i.ClientID, ExpiresIn: i.ExpiresIn}
}

func clientDTO(c *entity.ClientInfo) *ClientDTO {
	if c == nil {
		return nil
	}
	return &ClientDTO{
		ClientID:        c.ClientID,
		ApplicationName: c.ApplicationName,
		Description:     c.Description,
		Email:           c.ApplicationEmail,
		HomepageURL:     c.HomepageURL,
		LogoURL:         c.LogoURL,
	}
}

func registeredClientDTO(c *entity.ClientInfo) RegisteredClientDTO {
	urls := make([]string, 0, len(c.CallbackURLs))
	for _, cb := range c.CallbackURLs {
		urls = append(urls, cb.URL)
	}
	return RegisteredClientDTO{
		ClientDTO:       *clientDTO(c),
		ClientSecret:    c.ClientSecret,
		AdminKey:        c.AdminKey,
		ManagementEmail: c.ManagementEmail,
		RedirectURIs:    urls,
	}
}

func userDTO(u *entity.UserInfo) UserDTO {
	return UserDTO{
		Username: u.Username,
		Email:    u.Email,
		Mobile:   u.Mobile,
		Realname: u.Realname,
	}
}

func createdUserDTO(u *entity.UserInfo) UserDTO {
	dto := userDTO(u)
	id := u.ID
	dto.ID = &id
	return dto
}

func profileDTO(u *entity.UserInfo) UserDTO {
	dto := userDTO(u)
	dto.Registrations = make([]RegistrationDTO, 0, len(u.Registrations))
	for _, r := range u.Registrations {
		dto.Registrations = append(dto.Registrations, RegistrationDTO{
			UserClassifier:                 r.UserClassifier,
			ProhibitAccessInformation:      r.ProhibitAccessInformation,
			AllowAccessPersonalInformation: r.AllowAccessPersonalInformation,
			Client:                         clientDTO(r.ClientInfo),
		})
	}
	return dto
}

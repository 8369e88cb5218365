package oauth

import (
	"context"
	"crypto/subtle"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/store"
)

// ClientRegistration describes a client to register. Generated fields are
// only filled when empty.
type ClientRegistration struct {
	ClientID        string
	ClientSecret    string
	AdminKey        string
	Name            string
	Description     string
	Email           string
	ManagementEmail string
	HomepageURL     string
	LogoURL         string
	RedirectURIs    []string
}

func (r ClientRegistration) validate() error {
	missing := []string{}
	for _, f := range []struct{ name, value string }{
		{"management_email", r.ManagementEmail},
		{"name", r.Name},
		{"email", r.Email},
		{"homepage_url", r.HomepageURL},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.Validation("Missing required client fields.").WithDetail("fields", missing)
	}
	return nil
}

// RegisterClient creates a client and its callback urls in one
// transaction. client_id, client_secret and admin key are generated when
// not supplied.
func (s *Service) RegisterClient(ctx context.Context, r ClientRegistration) (client *entity.ClientInfo, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.register_client")
	defer func() { op.End(err) }()

	if err := r.validate(); err != nil {
		return nil, err
	}
	if r.ClientID == "" {
		r.ClientID = uuid.NewString()
	}
	if r.ClientSecret == "" {
		if r.ClientSecret, err = password.ClientSecret(); err != nil {
			return nil, secretError(err)
		}
	}
	if r.AdminKey == "" {
		if r.AdminKey, err = password.AdminKey(); err != nil {
			return nil, secretError(err)
		}
	}

	client = &entity.ClientInfo{
		ClientID:         r.ClientID,
		ClientSecret:     r.ClientSecret,
		AdminKey:         r.AdminKey,
		ApplicationName:  r.Name,
		ApplicationEmail: r.Email,
		ManagementEmail:  r.ManagementEmail,
		HomepageURL:      r.HomepageURL,
		LogoURL:          r.LogoURL,
		Description:      r.Description,
	}
	if err := s.store.Clients.Create(ctx, client, r.RedirectURIs); err != nil {
		return nil, err
	}

	s.log.Info("client registered", logger.Fields(logger.FieldClientID, client.ClientID, "callbacks", len(client.CallbackURLs)))
	return client, nil
}

// AddCallbackURLs appends callbacks to an existing client. Rows written
// before a failure are kept.
func (s *Service) AddCallbackURLs(ctx context.Context, client *entity.ClientInfo, urls []string) ([]entity.CallbackURL, error) {
	return s.store.Clients.CreateCallbackURLs(ctx, client.ID, urls)
}

// FindClient returns the client with its callbacks.
func (s *Service) FindClient(ctx context.Context, clientID string) (*entity.ClientInfo, error) {
	return s.store.Clients.FindByClientID(ctx, clientID)
}

// FindClientByAdminKey returns the client owning key.
func (s *Service) FindClientByAdminKey(ctx context.Context, key string) (*entity.ClientInfo, error) {
	return s.store.Clients.FindByAdminKey(ctx, key)
}

// DeleteClient removes a client with its callbacks, registrations, tokens
// and grant codes.
func (s *Service) DeleteClient(ctx context.Context, client *entity.ClientInfo) (err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.delete_client",
		attribute.String(observability.AttrClientID, client.ClientID))
	defer func() { op.End(err) }()

	regs, err := s.store.Registrations.FindByRelation(ctx, store.RelationFilter{ClientInfoID: client.ID})
	if err != nil {
		return err
	}
	tokens, err := s.tokensOf(ctx, regs...)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, tokens); err != nil {
		return err
	}
	if err := s.store.Clients.Delete(ctx, client.ID); err != nil {
		return err
	}
	s.metrics.TokensRevoked(ctx, "delete_client", int64(len(tokens)))
	s.log.Info("client deleted", logger.Fields(logger.FieldClientID, client.ClientID, "registrations", len(regs)))
	return nil
}

// authenticateClient resolves clientID and checks secret when the client
// is confidential.
func (s *Service) authenticateClient(ctx context.Context, clientID, secret string) (*entity.ClientInfo, error) {
	client, err := s.store.Clients.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if client.IsConfidential() && subtle.ConstantTimeCompare([]byte(client.ClientSecret), []byte(secret)) != 1 {
		return nil, errors.Unauthorized()
	}
	return client, nil
}

// clientForRedirect returns the client when redirectURI is exactly one of
// its callbacks. An unknown client is Unauthorized; an unregistered
// redirect uri is NotFound.
func (s *Service) clientForRedirect(ctx context.Context, clientID, redirectURI string) (*entity.ClientInfo, error) {
	client, err := s.store.Clients.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if !slices.Contains(callbackURLs(client), redirectURI) {
		return nil, errors.NotFound("callback url", "")
	}
	return client, nil
}

// AuthorizeRequest is the query of GET /v1/oauth/authorize.
type AuthorizeRequest struct {
	ClientID    string
	RedirectURI string
	State       string
}

// Authorize validates the client and redirect uri and returns where to
// send the browser: the login page, or the redirect uri itself when no
// login url is configured. No grant code is minted here; the user is not
// known yet. Login mints it.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (location string, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.authorize",
		attribute.String(observability.AttrClientID, req.ClientID))
	defer func() { op.End(err) }()

	if _, err := s.clientForRedirect(ctx, req.ClientID, req.RedirectURI); err != nil {
		return "", err
	}
	target := s.cfg.LoginURL
	if target == "" {
		target = req.RedirectURI
	}
	return withQuery(target, map[string]string{
		"callback":  req.RedirectURI,
		"client_id": req.ClientID,
		"state":     req.State,
	})
}

// withQuery adds the non-empty params to base's query.
func withQuery(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.BadRequest("Invalid redirect target.").WithCause(err)
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

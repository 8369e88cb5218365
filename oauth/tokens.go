package oauth

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/store"
)

// Token request types.
const (
	GrantTypeCode    = "grant_code"
	GrantTypeRefresh = "refresh_token"
)

// TokenPair is the result of a token request. Refresh is nil when a
// refresh token was used without rotation.
type TokenPair struct {
	Access  *entity.Token
	Refresh *entity.Token
}

// TokenRequest is the body of POST /v1/oauth/token.
type TokenRequest struct {
	Type         string
	ClientID     string
	ClientSecret string
	Code         string
	RefreshToken string
}

// Exchange dispatches a token request on its type.
func (s *Service) Exchange(ctx context.Context, req TokenRequest) (*TokenPair, error) {
	switch req.Type {
	case GrantTypeCode:
		return s.RedeemCode(ctx, req.ClientID, req.ClientSecret, req.Code)
	case GrantTypeRefresh:
		return s.Refresh(ctx, req.ClientID, req.ClientSecret, req.RefreshToken)
	default:
		return nil, errors.Validation("Unsupported token request type.").WithDetail("type", req.Type)
	}
}

// IssueToken creates one token of tokenType for reg through st, which may
// be transactional.
func (s *Service) IssueToken(ctx context.Context, st *store.Store, reg *entity.Registration, tokenType string) (*entity.Token, error) {
	secret, err := password.TokenSecret()
	if err != nil {
		return nil, secretError(err)
	}
	tok := &entity.Token{
		Lifetime:       s.newLifetime(s.cfg.TTL(tokenType)),
		RegistrationID: reg.ID,
		TokenType:      tokenType,
		Token:          secret,
	}
	if err := st.Tokens.Create(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// CreateTokenPair issues an access and a refresh token for reg in one
// transaction.
func (s *Service) CreateTokenPair(ctx context.Context, reg *entity.Registration) (*TokenPair, error) {
	var pair *TokenPair
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		pair, err = s.createTokenPair(ctx, tx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordIssued(ctx, pair)
	return pair, nil
}

func (s *Service) createTokenPair(ctx context.Context, tx *store.Store, reg *entity.Registration) (*TokenPair, error) {
	access, err := s.IssueToken(ctx, tx, reg, entity.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueToken(ctx, tx, reg, entity.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token for the registration of an unexpired
// refresh token owned by clientID. With rotation the presented refresh
// token is expired and a new one is returned as well.
func (s *Service) Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (pair *TokenPair, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.refresh",
		attribute.String(observability.AttrClientID, clientID),
		attribute.Bool("authd.rotate", s.cfg.RotateRefreshTokens))
	defer func() { op.End(err) }()

	client, err := s.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}
	old, err := s.store.Tokens.FindBySecret(ctx, refreshToken, entity.TokenTypeRefresh)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if old.IsExpired(s.now()) || old.Registration == nil || old.Registration.ClientInfoID != client.ID {
		return nil, errors.Unauthorized()
	}
	reg := old.Registration
	if s.cfg.RotateRefreshTokens {
		if err := s.revoke(ctx, []entity.Token{*old}); err != nil {
			return nil, err
		}
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if !s.cfg.RotateRefreshTokens {
			access, err := s.IssueToken(ctx, tx, reg, entity.TokenTypeAccess)
			pair = &TokenPair{Access: access}
			return err
		}
		if err := tx.Tokens.Revoke(ctx, old.ID); err != nil {
			return err
		}
		var err error
		pair, err = s.createTokenPair(ctx, tx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordIssued(ctx, pair)
	if s.cfg.RotateRefreshTokens {
		s.metrics.TokensRevoked(ctx, "rotate", 1)
	}

	s.log.Info("token refreshed", logger.Fields(
		logger.FieldClientID, clientID,
		logger.FieldRegistrationID, reg.ID.String(),
		"rotated", s.cfg.RotateRefreshTokens))
	return pair, nil
}

// LookupToken resolves a token secret to its grant, reading through the
// cache. tokenType empty matches any type. Unknown tokens are
// Unauthorized. Expiry is not checked here.
func (s *Service) LookupToken(ctx context.Context, secret, tokenType string) (*TokenGrant, error) {
	if secret == "" {
		return nil, errors.Unauthorized()
	}
	g, err := s.cache.Get(ctx, secret)
	if err != nil {
		s.log.Warn("token cache read failed", logger.Fields(logger.FieldError, err.Error()))
	}
	if g != nil {
		if tokenType != "" && g.TokenType != tokenType {
			return nil, errors.Unauthorized()
		}
		return g, nil
	}

	tok, err := s.store.Tokens.FindBySecret(ctx, secret, tokenType)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	g = NewTokenGrant(tok)
	if remaining := tok.Remaining(s.now()); remaining > 0 {
		if err := s.cache.Put(ctx, secret, g, millis(remaining)); err != nil {
			s.log.Warn("token cache write failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	return g, nil
}

// ExpireAll sets every token of a registration expired and returns how
// many were changed.
func (s *Service) ExpireAll(ctx context.Context, registrationID uuid.UUID) (n int64, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.expire_all",
		attribute.String(observability.AttrRegistrationID, registrationID.String()))
	defer func() { op.End(err) }()

	tokens, err := s.store.Tokens.ListByRegistration(ctx, registrationID)
	if err != nil {
		return 0, err
	}
	if err := s.revoke(ctx, tokens); err != nil {
		return 0, err
	}
	ids := make([]uuid.UUID, len(tokens))
	for i := range tokens {
		ids[i] = tokens[i].ID
	}
	if n, err = s.store.Tokens.SetExpired(ctx, ids...); err != nil {
		return 0, err
	}

	s.metrics.TokensRevoked(ctx, "logout", n)
	s.log.Info("registration tokens expired", logger.Fields(logger.FieldRegistrationID, registrationID.String(), "tokens", n))
	return n, nil
}

// TokenInfo describes the token behind a grant.
type TokenInfo struct {
	UserClassifier string
	ClientID       string
	ExpiresIn      int64
}

// TokenInfo reports who a grant belongs to and its remaining lifetime in
// milliseconds.
func (s *Service) TokenInfo(g *TokenGrant) TokenInfo {
	return TokenInfo{
		UserClassifier: g.UserClassifier,
		ClientID:       g.ClientID,
		ExpiresIn:      g.Lifetime.Remaining(s.now()),
	}
}

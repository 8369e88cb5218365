package oauth

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/store"
)

// IssueCode creates a grant code for reg with the configured lifetime.
func (s *Service) IssueCode(ctx context.Context, reg *entity.Registration) (*entity.AccessCode, error) {
	code, err := s.issueCode(ctx, s.store, reg)
	if err != nil {
		return nil, err
	}
	s.metrics.CodeIssued(ctx)
	return code, nil
}

func (s *Service) issueCode(ctx context.Context, st *store.Store, reg *entity.Registration) (*entity.AccessCode, error) {
	secret, err := password.GrantCode()
	if err != nil {
		return nil, secretError(err)
	}
	code := &entity.AccessCode{
		Lifetime:       s.newLifetime(s.cfg.GrantCodeTTL),
		RegistrationID: reg.ID,
		Code:           secret,
	}
	if err := st.Codes.Create(ctx, code); err != nil {
		return nil, err
	}
	s.log.Debug("grant code issued", logger.Fields(logger.FieldRegistrationID, reg.ID.String()))
	return code, nil
}

// RedeemCode exchanges an unexpired grant code issued to clientID for a
// token pair on the code's registration. Unknown, expired, foreign and
// already consumed codes are Unauthorized. When codes are consumed the
// code is deleted in the transaction that creates the pair.
func (s *Service) RedeemCode(ctx context.Context, clientID, clientSecret, code string) (pair *TokenPair, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.redeem_code",
		attribute.String(observability.AttrClientID, clientID))
	defer func() { op.End(err) }()

	client, err := s.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}
	ac, err := s.store.Codes.FindByCode(ctx, code)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if ac.IsExpired(s.now()) || ac.Registration == nil || ac.Registration.ClientInfoID != client.ID {
		return nil, errors.Unauthorized()
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if s.cfg.ConsumesCodes() {
			if err := tx.Codes.Consume(ctx, ac.ID); err != nil {
				return unauthorizedIfMissing(err)
			}
		}
		var err error
		pair, err = s.createTokenPair(ctx, tx, ac.Registration)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.CodeRedeemed(ctx)
	s.recordIssued(ctx, pair)

	s.log.Info("grant code redeemed", logger.Fields(
		logger.FieldClientID, clientID,
		logger.FieldRegistrationID, ac.RegistrationID.String()))
	return pair, nil
}

// LoginRequest is the body of POST /v1/user/login.
type LoginRequest struct {
	Email       string
	Password    string
	ClientID    string
	RedirectURI string
	State       string
}

// Login checks the user's password, links the user to the client and
// returns the redirect uri carrying a fresh grant code.
func (s *Service) Login(ctx context.Context, req LoginRequest) (location string, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.login",
		attribute.String(observability.AttrClientID, req.ClientID))
	defer func() { op.End(err) }()

	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return "", err
	}
	client, err := s.clientForRedirect(ctx, req.ClientID, req.RedirectURI)
	if err != nil {
		return "", err
	}

	var code *entity.AccessCode
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		reg, err := s.link(ctx, tx, client, user)
		if err != nil {
			return err
		}
		code, err = s.issueCode(ctx, tx, reg)
		return err
	})
	if err != nil {
		return "", err
	}
	s.metrics.CodeIssued(ctx)

	s.log.Info("user logged in", logger.Fields(
		logger.FieldClientID, client.ClientID,
		logger.FieldRegistrationID, code.RegistrationID.String()))
	return withQuery(req.RedirectURI, map[string]string{"code": code.Code, "state": req.State})
}

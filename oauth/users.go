package oauth

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/observability"
	"github.com/kbukum/authd/store"
)

// Signup is a new user account.
type Signup struct {
	Email    string
	Username string
	Realname string
	Password string
	Mobile   string
}

// SignupUser creates a user and its credential in one transaction. The
// password is hashed before the transaction starts.
func (s *Service) SignupUser(ctx context.Context, req Signup) (user *entity.UserInfo, err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.signup")
	defer func() { op.End(err) }()

	if req.Password == "" {
		return nil, errors.InvalidInput("password", "password is required")
	}
	digest, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}
	user = &entity.UserInfo{
		Username: req.Username,
		Email:    req.Email,
		Realname: req.Realname,
		Mobile:   req.Mobile,
	}
	if err := s.store.Users.Create(ctx, user, digest); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", logger.Fields(logger.FieldUserID, user.ID.String()))
	return user, nil
}

// Authenticate returns the user with email when plain matches the stored
// digest. Every mismatch, including a missing user or credential, is
// Unauthorized.
func (s *Service) Authenticate(ctx context.Context, email, plain string) (*entity.UserInfo, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if user.Credential == nil || plain == "" {
		return nil, errors.Unauthorized()
	}
	ok, err := s.hasher.Verify(ctx, plain, user.Credential.Digest)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Internal(err)
	}
	if !ok {
		return nil, errors.Unauthorized()
	}
	return user, nil
}

// Profile returns a user with its registrations and their clients.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*entity.UserInfo, error) {
	return s.store.Users.FindProfile(ctx, userID)
}

// ProfileByClassifier returns the user behind a registration of the
// client clientInfoID. Any other registration, or none, is Unauthorized.
func (s *Service) ProfileByClassifier(ctx context.Context, clientInfoID uuid.UUID, classifier string) (*entity.UserInfo, error) {
	reg, err := s.store.Registrations.FindByClassifier(ctx, classifier)
	if err != nil {
		return nil, unauthorizedIfMissing(err)
	}
	if reg.ClientInfoID != clientInfoID || reg.UserInfo == nil {
		return nil, errors.Unauthorized()
	}
	return reg.UserInfo, nil
}

// UpdateProfile changes a user's realname and mobile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd store.UserUpdate) (*entity.UserInfo, error) {
	return s.store.Users.Update(ctx, userID, upd)
}

// Signout deletes a user with its credential, registrations, tokens and
// grant codes.
func (s *Service) Signout(ctx context.Context, userID uuid.UUID) (err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.signout")
	defer func() { op.End(err) }()

	regs, err := s.store.Registrations.FindByRelation(ctx, store.RelationFilter{UserInfoID: userID})
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
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return err
	}
	s.metrics.TokensRevoked(ctx, "signout", int64(len(tokens)))
	s.log.Info("user signed out", logger.Fields(logger.FieldUserID, userID.String(), "registrations", len(regs)))
	return nil
}

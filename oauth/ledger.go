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

// FindRegistration returns the registration with the given classifier,
// its client and its user.
func (s *Service) FindRegistration(ctx context.Context, classifier string) (*entity.Registration, error) {
	return s.store.Registrations.FindByClassifier(ctx, classifier)
}

// FindRegistrations returns the registrations matching every filter set
// in f.
func (s *Service) FindRegistrations(ctx context.Context, f store.RelationFilter) ([]entity.Registration, error) {
	return s.store.Registrations.FindByRelation(ctx, f)
}

// Link returns the registration between client and user, creating it
// with a fresh classifier when there is none.
func (s *Service) Link(ctx context.Context, client *entity.ClientInfo, user *entity.UserInfo) (*entity.Registration, error) {
	return s.link(ctx, s.store, client, user)
}

func (s *Service) link(ctx context.Context, st *store.Store, client *entity.ClientInfo, user *entity.UserInfo) (*entity.Registration, error) {
	classifier, err := password.RandomSecret(password.Short)
	if err != nil {
		return nil, secretError(err)
	}
	reg := &entity.Registration{
		ClientInfoID:   client.ID,
		UserInfoID:     user.ID,
		UserClassifier: classifier,
	}
	created, err := st.Registrations.FindOrCreate(ctx, reg)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("registration created", logger.Fields(
			logger.FieldClientID, client.ClientID,
			logger.FieldRegistrationID, reg.ID.String()))
	}
	return reg, nil
}

// Unlink deletes a registration with its tokens and grant codes.
func (s *Service) Unlink(ctx context.Context, registrationID uuid.UUID) (err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.unlink",
		attribute.String(observability.AttrRegistrationID, registrationID.String()))
	defer func() { op.End(err) }()

	return s.deleteRegistration(ctx, registrationID)
}

// UnlinkByAdmin deletes the registration with classifier on behalf of
// the client identified by clientInfoID. A missing registration is a
// Conflict; one that belongs to another client is Unauthorized.
func (s *Service) UnlinkByAdmin(ctx context.Context, clientInfoID uuid.UUID, classifier string) (err error) {
	ctx, op := observability.StartOperation(ctx, "oauth.unlink_by_admin")
	defer func() { op.End(err) }()

	reg, err := s.store.Registrations.FindByClassifier(ctx, classifier)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return errors.Conflict("No registration matches the target.")
		}
		return err
	}
	if reg.ClientInfoID != clientInfoID {
		return errors.Unauthorized()
	}
	return s.deleteRegistration(ctx, reg.ID)
}

func (s *Service) deleteRegistration(ctx context.Context, id uuid.UUID) error {
	tokens, err := s.store.Tokens.ListByRegistration(ctx, id)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, tokens); err != nil {
		return err
	}
	if err := s.store.Registrations.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.TokensRevoked(ctx, "unlink", int64(len(tokens)))
	s.log.Info("registration deleted", logger.Fields(logger.FieldRegistrationID, id.String(), "tokens", len(tokens)))
	return nil
}

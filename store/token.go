package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
)

const resourceToken = "token"

// TokenRepository persists access and refresh tokens.
type TokenRepository struct {
	db *gorm.DB
}

// Create inserts tokens. Run it inside Store.Transaction to write several
// tokens atomically.
func (r *TokenRepository) Create(ctx context.Context, tokens ...*entity.Token) error {
	for _, t := range tokens {
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error; err != nil {
			return translate(err, resourceToken)
		}
	}
	return nil
}

// FindBySecret returns the token with the given secret and, when
// tokenType is not empty, that type. The registration is preloaded with
// its client, the client's callbacks and the user.
func (r *TokenRepository) FindBySecret(ctx context.Context, secret, tokenType string) (*entity.Token, error) {
	q := r.withRegistration(ctx).Where("token = ?", secret)
	if tokenType != "" {
		q = q.Where("token_type = ?", tokenType)
	}
	var t entity.Token
	if err := q.First(&t).Error; err != nil {
		return nil, translate(err, resourceToken)
	}
	return &t, nil
}

// FindByID returns the token with the same preloads as FindBySecret.
func (r *TokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Token, error) {
	var t entity.Token
	if err := r.withRegistration(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err, resourceToken)
	}
	return &t, nil
}

func (r *TokenRepository) withRegistration(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Registration").
		Preload("Registration.ClientInfo").
		Preload("Registration.ClientInfo.CallbackURLs").
		Preload("Registration.UserInfo")
}

// ListByRegistration returns every token of a registration, oldest first.
func (r *TokenRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]entity.Token, error) {
	var tokens []entity.Token
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("issued_at").
		Find(&tokens).Error
	if err != nil {
		return nil, translate(err, resourceToken)
	}
	return tokens, nil
}

// SetExpired sets expires_in to zero on exactly the given tokens and
// returns how many rows changed.
func (r *TokenRepository) SetExpired(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&entity.Token{}).Where("id IN ?", ids).Update("expires_in", 0)
	if res.Error != nil {
		return 0, translate(res.Error, resourceToken)
	}
	return res.RowsAffected, nil
}

// Revoke expires one token unless it is already revoked. It returns
// Unauthorized when no row changed, so of two concurrent revocations of
// the same token only one succeeds.
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.Token{}).
		Where("id = ? AND expires_in > 0", id).
		Update("expires_in", 0)
	if res.Error != nil {
		return translate(res.Error, resourceToken)
	}
	if res.RowsAffected == 0 {
		return errors.Unauthorized()
	}
	return nil
}

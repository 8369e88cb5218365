package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
)

const resourceUser = "user"

// UserUpdate lists the profile fields a user may change. Nil fields are
// left as they are.
type UserUpdate struct {
	Realname *string
	Mobile   *string
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool { return u.Realname == nil && u.Mobile == nil }

// UserRepository persists UserInfo and UserCredential.
type UserRepository struct {
	db *gorm.DB
}

// Create inserts user and, when digest is not empty, its credential in a
// single transaction.
func (r *UserRepository) Create(ctx context.Context, user *entity.UserInfo, digest string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		if digest == "" {
			return nil
		}
		cred := &entity.UserCredential{UserInfoID: user.ID, Digest: digest}
		if err := tx.Create(cred).Error; err != nil {
			return err
		}
		user.Credential = cred
		return nil
	})
	return translate(err, resourceUser)
}

// FindByID returns the user without relations.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserInfo, error) {
	var u entity.UserInfo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err, resourceUser)
	}
	return &u, nil
}

// FindProfile returns the user with its registrations and their clients.
func (r *UserRepository) FindProfile(ctx context.Context, id uuid.UUID) (*entity.UserInfo, error) {
	var u entity.UserInfo
	err := r.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Registrations.ClientInfo").
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, translate(err, resourceUser)
	}
	return &u, nil
}

// FindByEmail returns the user with its credential, if any.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.UserInfo, error) {
	var u entity.UserInfo
	if err := r.db.WithContext(ctx).Preload("Credential").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, resourceUser)
	}
	return &u, nil
}

// FindByUsername returns the user without relations.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.UserInfo, error) {
	var u entity.UserInfo
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, resourceUser)
	}
	return &u, nil
}

// Update applies upd to the user and returns the stored result.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*entity.UserInfo, error) {
	changes := map[string]any{}
	if upd.Realname != nil {
		changes["realname"] = *upd.Realname
	}
	if upd.Mobile != nil {
		changes["mobile"] = *upd.Mobile
	}
	if len(changes) == 0 {
		return nil, errors.Validation("No field to update.")
	}

	res := r.db.WithContext(ctx).Model(&entity.UserInfo{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, translate(res.Error, resourceUser)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFound(resourceUser, id.String())
	}
	return r.FindByID(ctx, id)
}

// Delete removes the user with its credential, registrations and their
// tokens and grant codes.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRegistrationChildren(tx, "user_info_id", id); err != nil {
			return err
		}
		if err := tx.Where("user_info_id = ?", id).Delete(&entity.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_info_id = ?", id).Delete(&entity.UserCredential{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.UserInfo{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound(resourceUser, id.String())
		}
		return nil
	})
	return translate(err, resourceUser)
}

package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/authd/database"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
)

const resourceRegistration = "registration"

// RelationFilter selects registrations by related records. Zero ids are
// ignored; the ones that are set must all match.
type RelationFilter struct {
	ClientInfoID uuid.UUID
	UserInfoID   uuid.UUID
	TokenID      uuid.UUID
	CodeID       uuid.UUID
}

// RegistrationRepository persists the client-user links.
type RegistrationRepository struct {
	db *gorm.DB
}

// FindByClassifier returns the registration with its client and user.
func (r *RegistrationRepository) FindByClassifier(ctx context.Context, classifier string) (*entity.Registration, error) {
	var reg entity.Registration
	err := r.db.WithContext(ctx).
		Preload("ClientInfo").
		Preload("UserInfo").
		Where("user_classifier = ?", classifier).
		First(&reg).Error
	if err != nil {
		return nil, translate(err, resourceRegistration)
	}
	return &reg, nil
}

// FindByRelation returns every registration matching all filters set in f,
// oldest first. Token and code filters are inner joins.
func (r *RegistrationRepository) FindByRelation(ctx context.Context, f RelationFilter) ([]entity.Registration, error) {
	q := r.db.WithContext(ctx).Model(&entity.Registration{}).Select("registrations.*")
	if f.ClientInfoID != uuid.Nil {
		q = q.Where("registrations.client_info_id = ?", f.ClientInfoID)
	}
	if f.UserInfoID != uuid.Nil {
		q = q.Where("registrations.user_info_id = ?", f.UserInfoID)
	}
	if f.TokenID != uuid.Nil {
		q = q.Joins("JOIN tokens ON tokens.registration_id = registrations.id AND tokens.id = ?", f.TokenID)
	}
	if f.CodeID != uuid.Nil {
		q = q.Joins("JOIN access_codes ON access_codes.registration_id = registrations.id AND access_codes.id = ?", f.CodeID)
	}

	var regs []entity.Registration
	if err := q.Order("registrations.created_at").Find(&regs).Error; err != nil {
		return nil, translate(err, resourceRegistration)
	}
	return regs, nil
}

// FindOrCreate loads the registration linking reg.ClientInfoID and
// reg.UserInfoID into reg, or inserts reg when there is none. It reports
// whether a row was created.
func (r *RegistrationRepository) FindOrCreate(ctx context.Context, reg *entity.Registration) (bool, error) {
	var existing entity.Registration
	err := r.db.WithContext(ctx).
		Where("client_info_id = ? AND user_info_id = ?", reg.ClientInfoID, reg.UserInfoID).
		Order("created_at").
		First(&existing).Error
	if err == nil {
		*reg = existing
		return false, nil
	}
	if !database.IsNotFoundError(err) {
		return false, translate(err, resourceRegistration)
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(reg).Error; err != nil {
		return false, translate(err, resourceRegistration)
	}
	return true, nil
}

// Delete removes the registration with its tokens and grant codes.
func (r *RegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registration_id = ?", id).Delete(&entity.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("registration_id = ?", id).Delete(&entity.AccessCode{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Registration{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound(resourceRegistration, id.String())
		}
		return nil
	})
	return translate(err, resourceRegistration)
}

package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
)

const resourceCode = "grant code"

// CodeRepository persists grant codes.
type CodeRepository struct {
	db *gorm.DB
}

// Create inserts code.
func (r *CodeRepository) Create(ctx context.Context, code *entity.AccessCode) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(code).Error; err != nil {
		return translate(err, resourceCode)
	}
	return nil
}

// FindByCode returns the grant code with its registration and client.
func (r *CodeRepository) FindByCode(ctx context.Context, code string) (*entity.AccessCode, error) {
	var c entity.AccessCode
	err := r.db.WithContext(ctx).
		Preload("Registration").
		Preload("Registration.ClientInfo").
		Where("code = ?", code).
		First(&c).Error
	if err != nil {
		return nil, translate(err, resourceCode)
	}
	return &c, nil
}

// Consume deletes a grant code. It fails with NotFound when the code is
// already gone, which makes a second redemption of the same code lose.
func (r *CodeRepository) Consume(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AccessCode{})
	if res.Error != nil {
		return translate(res.Error, resourceCode)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound(resourceCode, "")
	}
	return nil
}

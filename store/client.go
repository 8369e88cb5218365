package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
)

const resourceClient = "client"

// ClientRepository persists ClientInfo and its callback URLs.
type ClientRepository struct {
	db *gorm.DB
}

// FindByClientID returns the client with its callbacks.
func (r *ClientRepository) FindByClientID(ctx context.Context, clientID string) (*entity.ClientInfo, error) {
	return r.findOne(ctx, "client_id = ?", clientID)
}

// FindByAdminKey returns the client owning key, with its callbacks.
func (r *ClientRepository) FindByAdminKey(ctx context.Context, key string) (*entity.ClientInfo, error) {
	return r.findOne(ctx, "client_admin_key = ?", key)
}

// FindByID returns the client with its callbacks.
func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClientInfo, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ClientRepository) findOne(ctx context.Context, query string, arg any) (*entity.ClientInfo, error) {
	var c entity.ClientInfo
	err := r.db.WithContext(ctx).
		Preload("CallbackURLs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where(query, arg).
		First(&c).Error
	if err != nil {
		return nil, translate(err, resourceClient)
	}
	return &c, nil
}

// Create inserts client and one callback row per url in a single
// transaction. Nothing is written if any insert fails.
func (r *ClientRepository) Create(ctx context.Context, client *entity.ClientInfo, urls []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(client).Error; err != nil {
			return err
		}
		callbacks, err := insertCallbacks(tx, client.ID, urls)
		if err != nil {
			return err
		}
		client.CallbackURLs = callbacks
		return nil
	})
	return translate(err, resourceClient)
}

// CreateCallbackURLs appends callbacks to an existing client. Each row is
// written on its own: rows inserted before a failure stay and are returned
// alongside the error.
func (r *ClientRepository) CreateCallbackURLs(ctx context.Context, clientInfoID uuid.UUID, urls []string) ([]entity.CallbackURL, error) {
	created := make([]entity.CallbackURL, 0, len(urls))
	for _, u := range urls {
		cb := entity.CallbackURL{ClientInfoID: clientInfoID, URL: u}
		if err := r.db.WithContext(ctx).Create(&cb).Error; err != nil {
			return created, translate(err, "callback url")
		}
		created = append(created, cb)
	}
	return created, nil
}

func insertCallbacks(tx *gorm.DB, clientInfoID uuid.UUID, urls []string) ([]entity.CallbackURL, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	callbacks := make([]entity.CallbackURL, len(urls))
	for i, u := range urls {
		callbacks[i] = entity.CallbackURL{ClientInfoID: clientInfoID, URL: u}
	}
	if err := tx.Create(&callbacks).Error; err != nil {
		return nil, err
	}
	return callbacks, nil
}

// Delete removes the client with its callbacks, registrations and their
// tokens and grant codes.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRegistrationChildren(tx, "client_info_id", id); err != nil {
			return err
		}
		if err := tx.Where("client_info_id = ?", id).Delete(&entity.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_info_id = ?", id).Delete(&entity.CallbackURL{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.ClientInfo{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound(resourceClient, id.String())
		}
		return nil
	})
	return translate(err, resourceClient)
}

// deleteRegistrationChildren removes the tokens and grant codes of every
// registration whose column equals id.
func deleteRegistrationChildren(tx *gorm.DB, column string, id uuid.UUID) error {
	for _, model := range []any{&entity.Token{}, &entity.AccessCode{}} {
		regs := tx.Model(&entity.Registration{}).Select("id").Where(column+" = ?", id)
		if err := tx.Where("registration_id IN (?)", regs).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

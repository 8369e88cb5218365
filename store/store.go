package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/authd/database"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db *database.DB

	Clients       *ClientRepository
	Users         *UserRepository
	Registrations *RegistrationRepository
	Tokens        *TokenRepository
	Codes         *CodeRepository
}

// New creates a Store over db.
func New(db *database.DB) *Store {
	s := build(db.GormDB)
	s.db = db
	return s
}

func build(g *gorm.DB) *Store {
	return &Store{
		Clients:       &ClientRepository{db: g},
		Users:         &UserRepository{db: g},
		Registrations: &RegistrationRepository{db: g},
		Tokens:        &TokenRepository{db: g},
		Codes:         &CodeRepository{db: g},
	}
}

// Transaction runs fn with a Store bound to a single transaction. Calls on
// a Store that is already transactional join the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(build(tx))
	})
	return translate(err, "record")
}

// translate maps a gorm error to the error taxonomy, keeping nil as nil.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	return database.FromDatabase(err, resource)
}

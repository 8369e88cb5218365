package entity

import (
	"time"

	"github.com/google/uuid"
)

// Token types.
const (
	TokenTypeAccess  = "ACCESS"
	TokenTypeRefresh = "REFRESH"
)

// Lifetime is the issued-at plus time-to-live pair shared by tokens and codes.
// ExpiresIn is in milliseconds; zero marks an explicitly revoked secret.
type Lifetime struct {
	IssuedAt  time.Time `gorm:"column:issued_at;not null"`
	ExpiresIn int64     `gorm:"column:expires_in;not null"`
}

// NewLifetime starts a lifetime at now, truncated to the millisecond.
func NewLifetime(now time.Time, ttl int64) Lifetime {
	return Lifetime{IssuedAt: now.UTC().Truncate(time.Millisecond), ExpiresIn: ttl}
}

// ExpiresAt is the first instant at which the secret is expired.
func (l Lifetime) ExpiresAt() time.Time {
	return l.IssuedAt.Add(time.Duration(l.ExpiresIn) * time.Millisecond)
}

// IsExpired reports now >= issued_at + expires_in.
func (l Lifetime) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt())
}

// Remaining returns the milliseconds left before expiry, never negative.
func (l Lifetime) Remaining(now time.Time) int64 {
	if ms := l.ExpiresAt().Sub(now).Milliseconds(); ms > 0 {
		return ms
	}
	return 0
}

// AccessCode is a grant code bound to a registration.
type AccessCode struct {
	Model
	Lifetime       `gorm:"embedded"`
	RegistrationID uuid.UUID `gorm:"type:char(36);not null;index"`
	Code           string    `gorm:"column:code;uniqueIndex;not null"`

	Registration *Registration `gorm:"foreignKey:RegistrationID"`
}

func (AccessCode) TableName() string { return "access_codes" }

// Token is an access or refresh token bound to a registration.
type Token struct {
	Model
	Lifetime       `gorm:"embedded"`
	RegistrationID uuid.UUID `gorm:"type:char(36);not null;index"`
	TokenType      string    `gorm:"column:token_type;not null"`
	Token          string    `gorm:"column:token;uniqueIndex;not null"`

	Registration *Registration `gorm:"foreignKey:RegistrationID"`
}

func (Token) TableName() string { return "tokens" }

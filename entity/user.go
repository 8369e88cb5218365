package entity

import "github.com/google/uuid"

// UserInfo is an end-user account.
type UserInfo struct {
	Model
	Username string `gorm:"column:username;uniqueIndex;not null"`
	Email    string `gorm:"column:email;uniqueIndex;not null"`
	Mobile   string `gorm:"column:mobile;not null"`
	Realname string `gorm:"column:realname"`

	Credential    *UserCredential `gorm:"foreignKey:UserInfoID"`
	Registrations []Registration  `gorm:"foreignKey:UserInfoID"`
}

func (UserInfo) TableName() string { return "user_infos" }

// UserCredential holds the password digest of a user. A user without one
// cannot sign in with a password.
type UserCredential struct {
	Model
	UserInfoID uuid.UUID `gorm:"type:char(36);uniqueIndex;not null"`
	Digest     string    `gorm:"column:digest;not null"`
}

func (UserCredential) TableName() string { return "user_credentials" }

package entity

import "github.com/google/uuid"

// Registration links one user to one client. UserClassifier is the only
// user identifier the client ever sees.
type Registration struct {
	Model
	ClientInfoID                   uuid.UUID `gorm:"type:char(36);not null;index"`
	UserInfoID                     uuid.UUID `gorm:"type:char(36);not null;index"`
	UserClassifier                 string    `gorm:"column:user_classifier;uniqueIndex;not null"`
	ProhibitAccessInformation      bool      `gorm:"column:prohibit_access_information;not null"`
	AllowAccessPersonalInformation bool      `gorm:"column:allow_access_personal_information;not null"`

	ClientInfo *ClientInfo `gorm:"foreignKey:ClientInfoID"`
	UserInfo   *UserInfo   `gorm:"foreignKey:UserInfoID"`
}

func (Registration) TableName() string { return "registrations" }

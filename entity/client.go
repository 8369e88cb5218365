package entity

import "github.com/google/uuid"

// ClientInfo is a registered third-party application.
type ClientInfo struct {
	Model
	ClientID         string `gorm:"column:client_id;uniqueIndex;not null"`
	ClientSecret     string `gorm:"column:client_secret"`
	AdminKey         string `gorm:"column:client_admin_key;uniqueIndex;not null"`
	ApplicationName  string `gorm:"column:application_name;uniqueIndex;not null"`
	ApplicationEmail string `gorm:"column:application_email;not null"`
	ManagementEmail  string `gorm:"column:management_email;not null"`
	HomepageURL      string `gorm:"column:homepage_url;not null"`
	LogoURL          string `gorm:"column:logo_url"`
	Description      string `gorm:"column:description"`

	CallbackURLs []CallbackURL `gorm:"foreignKey:ClientInfoID"`
}

func (ClientInfo) TableName() string { return "client_infos" }

// IsConfidential reports whether token requests must present the client secret.
func (c *ClientInfo) IsConfidential() bool { return c.ClientSecret != "" }

// CallbackURL is a redirect target and trusted origin of one client.
type CallbackURL struct {
	Model
	ClientInfoID uuid.UUID `gorm:"type:char(36);not null;index"`
	URL          string    `gorm:"column:callback_url;uniqueIndex;not null"`
}

func (CallbackURL) TableName() string { return "callback_urls" }

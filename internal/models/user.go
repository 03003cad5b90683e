package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthProvider tags where an identity came from.
type AuthProvider string

const (
	ProviderFacebook  AuthProvider = "facebook"
	ProviderInstagram AuthProvider = "instagram"
	ProviderGoogle    AuthProvider = "google"
	ProviderX         AuthProvider = "x"
	ProviderLocal     AuthProvider = "local"
)

// Valid reports whether p is one of the known providers.
func (p AuthProvider) Valid() bool {
	switch p {
	case ProviderFacebook, ProviderInstagram, ProviderGoogle, ProviderX, ProviderLocal:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the durable identity record. (Provider, ProviderUserID) is the
// social-login idempotency key.
type User struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Email          *string      `gorm:"size:255;uniqueIndex" json:"email"`
	Name           string       `gorm:"size:255;not null" json:"name"`
	Description    *string      `gorm:"size:500" json:"description"`
	Address        *string      `gorm:"size:255" json:"address"`
	PhotoURL       *string      `gorm:"size:1024" json:"photo_url"`
	Provider       AuthProvider `gorm:"size:20;not null;default:'local';uniqueIndex:idx_users_provider_identity,priority:1" json:"provider"`
	ProviderUserID *string      `gorm:"size:255;uniqueIndex:idx_users_provider_identity,priority:2" json:"-"`
	Role           Role         `gorm:"size:20;not null;default:'user'" json:"role"`
	LastLoginAt    *time.Time   `json:"last_login_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

package user

import (
	"time"

	"github.com/google/uuid"
)

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash *string      `gorm:"type:text" json:"-"`
	Provider     AuthProvider `gorm:"type:varchar(16);not null;default:'LOCAL'" json:"provider"`
	Role         string       `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`

	// Google refresh token, AES-GCM encrypted before storage.
	GoogleRefreshToken *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"
)

// RefreshToken represents a JWT refresh token in the database. UserID alone
// is ambiguous because admins, doctors and patients live in separate tables,
// so the role is stored alongside it.
type RefreshToken struct {
	BaseModel
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

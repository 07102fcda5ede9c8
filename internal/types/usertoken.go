package types

import (
	"time"

	"github.com/google/uuid"
)

// UserToken is a live session record. A JWT is only accepted while its row
// exists, so logout is an immediate revocation.
type UserToken struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"index;not null" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	AccessToken string    `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	ExpiresAt   time.Time `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

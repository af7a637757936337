package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	PasswordHash    string    `gorm:"not null;column:password_hash" json:"-"`
	Email           string    `gorm:"column:email" json:"email"`
	FullName        string    `gorm:"column:full_name" json:"full_name"`
	CurrentSportID  *string   `gorm:"column:current_sport_id" json:"current_sport_id,omitempty"`
	AvatarBucketKey string    `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key,omitempty"`
	AvatarURL       string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "users" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SportMembership is one row per (user, sport) pair. The unique index is what
// makes the onboarding upsert atomic.
type SportMembership struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_user_sport" json:"user_id"`
	User        *User             `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SportID     string            `gorm:"not null;uniqueIndex:idx_user_sport;column:sport_id" json:"sport_id"`
	SkillLevel  string            `gorm:"not null;default:'Beginner';column:skill_level" json:"skill_level"`
	JoinedAt    time.Time         `gorm:"not null;column:joined_at" json:"joined_at"`
	ProfileData datatypes.JSONMap `gorm:"column:profile_data;type:jsonb" json:"profile_data,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (SportMembership) TableName() string { return "user_sports" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session is insert-only: one row per completed (or best-effort completed)
// deep analysis. VideoURL holds the sentinel value when the archival upload
// failed, never an empty string.
type Session struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SportID         string         `gorm:"not null;index;column:sport_id" json:"sport_id"`
	VideoURL        string         `gorm:"column:video_url" json:"video_url"`
	DurationSeconds int            `gorm:"not null;default:0;column:duration_seconds" json:"duration_seconds"`
	TechnicalScore  float64        `gorm:"column:technical_score" json:"technical_score"`
	Summary         string         `gorm:"column:summary" json:"summary"`
	DetailedFlaws   datatypes.JSON `gorm:"column:detailed_flaws;type:jsonb" json:"detailed_flaws"`
	EquipmentAdvice string         `gorm:"column:equipment_advice" json:"equipment_advice"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Session) TableName() string { return "sessions" }

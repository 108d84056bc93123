package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral links a referring user to a user who signed up with their code.
type Referral struct {
	ID             uuid.UUID       `gorm:"column:referral_id;type:uuid;primaryKey"`
	ReferrerUserID string          `gorm:"column:referrer_user_id;not null;index"`
	ReferredUserID string          `gorm:"column:referred_user_id;not null"`
	RewardAmount   decimal.Decimal `gorm:"column:reward_amount;type:numeric(14,2);not null;default:0"`
	Status         string          `gorm:"column:status;not null;default:'pending'"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// Coupon is a redeemable discount definition. Usage is tracked in CouponUsage.
type Coupon struct {
	ID                uuid.UUID           `gorm:"column:coupon_id;type:uuid;primaryKey"`
	Code              string              `gorm:"column:code;not null;uniqueIndex"`
	Description       string              `gorm:"column:description;not null;default:''"`
	DiscountType      enums.DiscountType  `gorm:"column:discount_type;type:text;not null"`
	DiscountValue     decimal.Decimal     `gorm:"column:discount_value;type:numeric(14,2);not null"`
	MaxDiscount       decimal.NullDecimal `gorm:"column:max_discount;type:numeric(14,2)"`
	MinOrderValue     decimal.NullDecimal `gorm:"column:min_order_value;type:numeric(14,2)"`
	UsageLimitPerUser *int                `gorm:"column:usage_limit_per_user"`
	ValidFrom         time.Time           `gorm:"column:valid_from;not null"`
	ValidTo           time.Time           `gorm:"column:valid_to;not null"`
	Status            enums.CouponStatus  `gorm:"column:status;type:text;not null;default:'active'"`
}

// UsageLimit returns the positive per-user limit, or 0 when usage is unlimited.
func (c Coupon) UsageLimit() int {
	if c.UsageLimitPerUser == nil || *c.UsageLimitPerUser <= 0 {
		return 0
	}
	return *c.UsageLimitPerUser
}

// CouponUsage counts how many times a user redeemed a coupon.
type CouponUsage struct {
	CouponID   uuid.UUID `gorm:"column:coupon_id;type:uuid;primaryKey"`
	UserID     string    `gorm:"column:user_id;primaryKey"`
	UsageCount int       `gorm:"column:usage_count;not null;default:0"`
	LastUsedAt time.Time `gorm:"column:last_used_at;not null"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// PaymentTransaction is one immutable payment attempt against a booking.
type PaymentTransaction struct {
	ID               uuid.UUID                  `gorm:"column:payment_record_id;type:uuid;primaryKey"`
	BookingID        string                     `gorm:"column:booking_id;not null;index"`
	UserID           string                     `gorm:"column:user_id;not null"`
	PartnerID        string                     `gorm:"column:partner_id;not null"`
	HotelID          string                     `gorm:"column:hotel_id;not null"`
	Gateway          string                     `gorm:"column:gateway;not null;default:'Razorpay'"`
	GatewayOrderID   string                     `gorm:"column:gateway_order_id;not null;default:''"`
	GatewayPaymentID string                     `gorm:"column:gateway_payment_id;not null;default:''"`
	GatewaySignature string                     `gorm:"column:gateway_signature;not null;default:''"`
	PaymentMethod    string                     `gorm:"column:payment_method;not null;default:''"`
	Currency         string                     `gorm:"column:currency;not null;default:'INR'"`
	PaymentStatus    enums.PaymentAttemptStatus `gorm:"column:payment_status;type:text;not null"`
	FailureReason    *string                    `gorm:"column:failure_reason"`
	Amount           decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null"`
	AttemptNo        int                        `gorm:"column:attempt_no;not null"`
	Source           enums.PaymentSource        `gorm:"column:source;type:text;not null"`
	IsRefunded       bool                       `gorm:"column:is_refunded;not null;default:false"`
	RefundAmount     decimal.Decimal            `gorm:"column:refund_amount;type:numeric(14,2);not null;default:0"`
	CreatedAt        time.Time                  `gorm:"column:created_at;autoCreateTime"`
}

package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// BookingCreatedEvent announces a new booking and the money already applied to it.
type BookingCreatedEvent struct {
	BookingID            string                  `json:"booking_id"`
	PartnerID            string                  `json:"partner_id"`
	HotelID              string                  `json:"hotel_id"`
	UserID               string                  `json:"user_id"`
	HotelType            string                  `json:"hotel_type,omitempty"`
	PaymentMethodType    enums.PaymentMethodType `json:"payment_method_type"`
	PaymentStatus        enums.PaymentStatus     `json:"payment_status"`
	OriginalAmount       decimal.Decimal         `json:"original_amount"`
	FinalPayableAmount   decimal.Decimal         `json:"final_payable_amount"`
	WalletAmountDeducted decimal.Decimal         `json:"wallet_amount_deducted"`
	CouponCode           string                  `json:"coupon_code,omitempty"`
	CouponDiscountAmount decimal.Decimal         `json:"coupon_discount_amount"`
}

// BookingStatusChangedEvent is emitted for every booking_status transition.
type BookingStatusChangedEvent struct {
	BookingID string              `json:"booking_id"`
	PartnerID string              `json:"partner_id"`
	From      enums.BookingStatus `json:"from"`
	To        enums.BookingStatus `json:"to"`
	Version   int                 `json:"version"`
}

// BookingCancelledEvent is emitted the first time a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID    string             `json:"booking_id"`
	PartnerID    string             `json:"partner_id"`
	UserID       string             `json:"user_id"`
	RefundStatus enums.RefundStatus `json:"refund_status"`
	CancelledAt  time.Time          `json:"cancelled_at"`
}

// BookingDatesChangedEvent carries the recomputed stay.
type BookingDatesChangedEvent struct {
	BookingID          string          `json:"booking_id"`
	CheckInDate        string          `json:"check_in_date"`
	CheckOutDate       string          `json:"check_out_date"`
	Nights             int             `json:"nights"`
	FinalPayableAmount decimal.Decimal `json:"final_payable_amount"`
}

// PaymentRecordedEvent is emitted for every payment attempt, paid or failed.
type PaymentRecordedEvent struct {
	PaymentRecordID  uuid.UUID                  `json:"payment_record_id"`
	BookingID        string                     `json:"booking_id"`
	AttemptNo        int                        `json:"attempt_no"`
	Status           enums.PaymentAttemptStatus `json:"status"`
	Source           enums.PaymentSource        `json:"source"`
	GatewayOrderID   string                     `json:"gateway_order_id"`
	GatewayPaymentID string                     `json:"gateway_payment_id,omitempty"`
	Amount           decimal.Decimal            `json:"amount"`
	FailureReason    string                     `json:"failure_reason,omitempty"`
	BookingConfirmed bool                       `json:"booking_confirmed"`
}

// PayoutRequestedEvent is emitted when a partner payout request is accepted.
type PayoutRequestedEvent struct {
	TransactionID    string          `json:"transaction_id"`
	PartnerID        string          `json:"partner_id"`
	WithdrawalAmount decimal.Decimal `json:"withdrawal_amount"`
	BalanceAmount    decimal.Decimal `json:"balance_amount"`
	NetRevenue       decimal.Decimal `json:"net_revenue"`
}

// PayoutSettledEvent is emitted when an operator settles a payout request.
type PayoutSettledEvent struct {
	TransactionID    string                         `json:"transaction_id"`
	PartnerID        string                         `json:"partner_id"`
	Status           enums.PartnerTransactionStatus `json:"status"`
	WithdrawalAmount decimal.Decimal                `json:"withdrawal_amount"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// Booking is a reservation at a hotel or paying-guest property. Bookings are
// never deleted; cancellation is a status transition.
type Booking struct {
	ID           string `gorm:"column:booking_id;primaryKey"`
	PartnerID    string `gorm:"column:partner_id;not null;index"`
	HotelID      string `gorm:"column:hotel_id;not null"`
	HotelName    string `gorm:"column:hotel_name;not null;default:''"`
	HotelType    string `gorm:"column:hotel_type;not null;default:''"`
	HotelAddress string `gorm:"column:hotel_address;not null;default:''"`
	HotelContact string `gorm:"column:hotel_contact;not null;default:''"`
	UserID       string `gorm:"column:user_id;not null;index"`
	GuestName    string `gorm:"column:guest_name;not null;default:''"`
	Email        string `gorm:"column:email;not null;default:''"`

	CheckInDate  time.Time  `gorm:"column:check_in_date;type:date;not null"`
	CheckOutDate *time.Time `gorm:"column:check_out_date;type:date"`

	GuestCount       int `gorm:"column:guest_count;not null;default:0"`
	Adults           int `gorm:"column:adults;not null;default:0"`
	Children         int `gorm:"column:children;not null;default:0"`
	TotalRoomsBooked int `gorm:"column:total_rooms_booked;not null;default:1"`
	TotalDaysAtStay  int `gorm:"column:total_days_at_stay;not null;default:0"`
	Months           int `gorm:"column:months;not null;default:0"`

	RoomType          string          `gorm:"column:room_type;not null;default:''"`
	RoomPricePerDay   decimal.Decimal `gorm:"column:room_price_per_day;type:numeric(14,2);not null;default:0"`
	RoomPricePerMonth decimal.Decimal `gorm:"column:room_price_per_month;type:numeric(14,2);not null;default:0"`
	AllDaysPrice      decimal.Decimal `gorm:"column:all_days_price;type:numeric(14,2);not null;default:0"`
	GST               decimal.Decimal `gorm:"column:gst;type:numeric(14,2);not null;default:0"`

	OriginalAmount     decimal.Decimal `gorm:"column:original_amount;type:numeric(14,2);not null"`
	FinalPayableAmount decimal.Decimal `gorm:"column:final_payable_amount;type:numeric(14,2);not null"`
	AmountPaidOnline   decimal.Decimal `gorm:"column:amount_paid_online;type:numeric(14,2);not null;default:0"`
	DueAmountAtHotel   decimal.Decimal `gorm:"column:due_amount_at_hotel;type:numeric(14,2);not null;default:0"`

	PaymentMethodType enums.PaymentMethodType `gorm:"column:payment_method_type;type:text;not null"`
	PaidVia           string                  `gorm:"column:paid_via;not null;default:''"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'PENDING'"`
	BookingStatus     enums.BookingStatus     `gorm:"column:booking_status;type:text;not null;default:'PENDING'"`
	TransactionID     string                  `gorm:"column:transaction_id;not null;default:''"`

	WalletUsed           bool            `gorm:"column:wallet_used;not null;default:false"`
	WalletAmountDeducted decimal.Decimal `gorm:"column:wallet_amount_deducted;type:numeric(14,2);not null;default:0"`
	CouponCode           string          `gorm:"column:coupon_code;not null;default:''"`
	CouponDiscountAmount decimal.Decimal `gorm:"column:coupon_discount_amount;type:numeric(14,2);not null;default:0"`

	LastPaymentRecordID *uuid.UUID         `gorm:"column:last_payment_record_id;type:uuid"`
	RefundStatus        enums.RefundStatus `gorm:"column:refund_status;type:text;not null;default:''"`
	Version             int                `gorm:"column:version;not null;default:1"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Nights returns the number of nights between check-in and check-out, or 0
// when the booking has no check-out date.
func (b Booking) Nights() int {
	if b.CheckOutDate == nil {
		return 0
	}
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}

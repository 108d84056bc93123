package bookings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// BookingDTO is the public shape of a booking.
type BookingDTO struct {
	BookingID            string                  `json:"booking_id"`
	PartnerID            string                  `json:"partner_id"`
	HotelID              string                  `json:"hotel_id"`
	HotelName            string                  `json:"hotel_name"`
	HotelType            string                  `json:"hotel_type"`
	HotelAddress         string                  `json:"hotel_address"`
	HotelContact         string                  `json:"hotel_contact"`
	UserID               string                  `json:"user_id"`
	GuestName            string                  `json:"guest_name"`
	Email                string                  `json:"email"`
	CheckInDate          string                  `json:"check_in_date"`
	CheckOutDate         string                  `json:"check_out_date,omitempty"`
	GuestCount           int                     `json:"guest_count"`
	Adults               int                     `json:"adults"`
	Children             int                     `json:"children"`
	TotalRoomsBooked     int                     `json:"total_rooms_booked"`
	TotalDaysAtStay      int                     `json:"total_days_at_stay"`
	Months               int                     `json:"months,omitempty"`
	RoomType             string                  `json:"room_type,omitempty"`
	RoomPricePerDay      decimal.Decimal         `json:"room_price_per_day"`
	RoomPricePerMonth    decimal.Decimal         `json:"room_price_per_month"`
	AllDaysPrice         decimal.Decimal         `json:"all_days_price"`
	GST                  decimal.Decimal         `json:"gst"`
	OriginalAmount       decimal.Decimal         `json:"original_amount"`
	FinalPayableAmount   decimal.Decimal         `json:"final_payable_amount"`
	AmountPaidOnline     decimal.Decimal         `json:"amount_paid_online"`
	DueAmountAtHotel     decimal.Decimal         `json:"due_amount_at_hotel"`
	PaymentMethodType    enums.PaymentMethodType `json:"payment_method_type"`
	PaidVia              string                  `json:"paid_via"`
	PaymentStatus        enums.PaymentStatus     `json:"payment_status"`
	BookingStatus        enums.BookingStatus     `json:"booking_status"`
	TransactionID        string                  `json:"transaction_id"`
	WalletUsed           bool                    `json:"wallet_used"`
	WalletAmountDeducted decimal.Decimal         `json:"wallet_amount_deducted"`
	CouponCode           string                  `json:"coupon_code,omitempty"`
	CouponDiscountAmount decimal.Decimal         `json:"coupon_discount_amount"`
	RefundStatus         enums.RefundStatus      `json:"refund_status,omitempty"`
	Version              int                     `json:"version"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

func ToBookingDTO(b models.Booking) BookingDTO {
	dto := BookingDTO{
		BookingID:            b.ID,
		PartnerID:            b.PartnerID,
		HotelID:              b.HotelID,
		HotelName:            b.HotelName,
		HotelType:            b.HotelType,
		HotelAddress:         b.HotelAddress,
		HotelContact:         b.HotelContact,
		UserID:               b.UserID,
		GuestName:            b.GuestName,
		Email:                b.Email,
		CheckInDate:          b.CheckInDate.Format(dateLayout),
		GuestCount:           b.GuestCount,
		Adults:               b.Adults,
		Children:             b.Children,
		TotalRoomsBooked:     b.TotalRoomsBooked,
		TotalDaysAtStay:      b.TotalDaysAtStay,
		Months:               b.Months,
		RoomType:             b.RoomType,
		RoomPricePerDay:      b.RoomPricePerDay,
		RoomPricePerMonth:    b.RoomPricePerMonth,
		AllDaysPrice:         b.AllDaysPrice,
		GST:                  b.GST,
		OriginalAmount:       b.OriginalAmount,
		FinalPayableAmount:   b.FinalPayableAmount,
		AmountPaidOnline:     b.AmountPaidOnline,
		DueAmountAtHotel:     b.DueAmountAtHotel,
		PaymentMethodType:    b.PaymentMethodType,
		PaidVia:              b.PaidVia,
		PaymentStatus:        b.PaymentStatus,
		BookingStatus:        b.BookingStatus,
		TransactionID:        b.TransactionID,
		WalletUsed:           b.WalletUsed,
		WalletAmountDeducted: b.WalletAmountDeducted,
		CouponCode:           b.CouponCode,
		CouponDiscountAmount: b.CouponDiscountAmount,
		RefundStatus:         b.RefundStatus,
		Version:              b.Version,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
	if b.CheckOutDate != nil {
		dto.CheckOutDate = b.CheckOutDate.Format(dateLayout)
	}
	return dto
}

func ToBookingDTOs(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToBookingDTO(row))
	}
	return out
}

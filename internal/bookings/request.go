package bookings

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

// HotelTypePG marks monthly paying-guest stays.
const HotelTypePG = "PG"

// Request is a booking payload resolved once at the boundary. It is either a
// HotelBookingRequest (nightly stay) or a PgBookingRequest (monthly stay).
type Request interface {
	Normalize() (NewBooking, error)
}

// NewBooking is the shape-independent booking input the engine works on.
type NewBooking struct {
	PartnerID    string
	HotelID      string
	HotelName    string
	HotelType    string
	HotelAddress string
	HotelContact string
	UserID       string
	GuestName    string
	Email        string

	CheckIn  time.Time
	CheckOut *time.Time

	GuestCount       int
	Adults           int
	Children         int
	TotalRoomsBooked int
	TotalDaysAtStay  int
	Months           int

	RoomType          string
	RoomPricePerDay   decimal.Decimal
	RoomPricePerMonth decimal.Decimal
	AllDaysPrice      decimal.Decimal
	GST               decimal.Decimal

	OriginalAmount     decimal.Decimal
	FinalPayableAmount decimal.Decimal
	AmountPaidOnline   decimal.Decimal
	DueAmountAtHotel   decimal.Decimal

	PaymentMethod string
	PaidVia       string
	PaymentStatus string
	TransactionID string

	WalletRequested      bool
	WalletAmount         decimal.Decimal
	CouponCode           string
	CouponDiscountAmount decimal.Decimal
}

// PaymentMethodType resolves the stored payment method from the client label.
func (n NewBooking) PaymentMethodType() enums.PaymentMethodType {
	return enums.ResolvePaymentMethodType(n.PaymentMethod)
}

type commonFields struct {
	PartnerID    string `json:"Partner_ID"`
	HotelID      string `json:"Hotel_ID"`
	HotelName    string `json:"Hotel_Name"`
	HotelType    string `json:"Hotel_Type"`
	HotelAddress string `json:"Hotel_Address"`
	HotelContact string `json:"Hotel_Contact"`
	UserID       string `json:"User_ID"`
	GuestName    string `json:"Guest_Name"`
	Email        string `json:"Email"`

	CheckInDate  string `json:"Check_In_Date"`
	CheckOutDate string `json:"Check_Out_Date"`

	TotalPrice         *money.Lenient `json:"Total_Price"`
	OriginalTotalPrice money.Lenient  `json:"Original_Total_Price"`
	FinalPayableAmount money.Lenient  `json:"Final_Payable_Amount"`
	AmountPaidOnline   money.Lenient  `json:"Amount_Paid_Online"`
	DueAmountAtHotel   money.Lenient  `json:"Due_Amount_At_Hotel"`
	GST                money.Lenient  `json:"GST"`

	PaymentMethodType string `json:"Payment_Method_Type"`
	PaymentType       string `json:"Payment_Type"`
	PaidVia           string `json:"Paid_Via"`
	PaymentStatus     string `json:"Payment_Status"`
	TransactionID     string `json:"Transaction_ID"`

	WalletUsed           flag          `json:"Wallet_Used"`
	WalletAmount         money.Lenient `json:"Wallet_Amount"`
	CouponCode           string        `json:"Coupon_Code"`
	CouponDiscountAmount money.Lenient `json:"Coupon_Discount_Amount"`
}

// HotelBookingRequest is a nightly hotel stay.
type HotelBookingRequest struct {
	commonFields
	GuestCount        count          `json:"Guest_Count"`
	Adults            count          `json:"Adults"`
	Children          count          `json:"Children"`
	TotalRoomsBooked  count          `json:"Total_Rooms_Booked"`
	TotalDaysAtStay   count          `json:"Total_Days_at_Stay"`
	Months            *count         `json:"Months"`
	RoomType          string         `json:"Room_Type"`
	RoomPricePerDay   money.Lenient  `json:"Room_Price_Per_Day"`
	RoomPricePerMonth money.Lenient  `json:"Room_Price_Per_Month"`
	AllDaysPrice      *money.Lenient `json:"All_Days_Price"`
	AllMonthsPrice    money.Lenient  `json:"All_Months_Price"`
}

// PgBookingRequest is a monthly paying-guest stay.
type PgBookingRequest struct {
	commonFields
	Persons           count          `json:"Persons"`
	Months            *count         `json:"Months"`
	RoomType          *string        `json:"Room_Type"`
	SelectedRoomType  string         `json:"Selected_Room_Type"`
	MonthlyPrice      money.Lenient  `json:"Monthly_Price"`
	RoomPricePerMonth *money.Lenient `json:"Room_Price_Per_Month"`
	SelectedRoomPrice money.Lenient  `json:"Selected_Room_Price"`
	AllDaysPrice      *money.Lenient `json:"All_Days_Price"`
	AllMonthsPrice    money.Lenient  `json:"All_Months_Price"`
}

// ParseRequest decodes a raw booking payload into its concrete variant.
// Payloads carrying Selected_Room_Type or Monthly_Price are PG bookings.
func ParseRequest(raw []byte) (Request, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid JSON payload")
	}
	_, hasRoomType := keys["Selected_Room_Type"]
	_, hasMonthly := keys["Monthly_Price"]
	if hasRoomType || hasMonthly {
		var req PgBookingRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid PG booking payload")
		}
		return &req, nil
	}
	var req HotelBookingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking payload")
	}
	return &req, nil
}

// Normalize implements Request.
func (r *HotelBookingRequest) Normalize() (NewBooking, error) {
	out, err := r.commonFields.normalize()
	if err != nil {
		return NewBooking{}, err
	}
	out.HotelType = strings.TrimSpace(r.HotelType)
	out.GuestCount = int(r.GuestCount)
	out.Adults = int(r.Adults)
	out.Children = int(r.Children)
	out.TotalRoomsBooked = int(r.TotalRoomsBooked)
	out.TotalDaysAtStay = int(r.TotalDaysAtStay)
	out.Months = 1
	if r.Months != nil {
		out.Months = int(*r.Months)
	}
	out.RoomType = strings.TrimSpace(r.RoomType)
	out.RoomPricePerDay = r.RoomPricePerDay.Decimal
	out.RoomPricePerMonth = r.RoomPricePerMonth.Decimal
	out.AllDaysPrice = r.AllMonthsPrice.Decimal
	if r.AllDaysPrice != nil {
		out.AllDaysPrice = r.AllDaysPrice.Decimal
	}
	return out, nil
}

// Normalize implements Request.
func (r *PgBookingRequest) Normalize() (NewBooking, error) {
	out, err := r.commonFields.normalize()
	if err != nil {
		return NewBooking{}, err
	}
	out.HotelType = HotelTypePG
	out.GuestCount = int(r.Persons)
	out.Adults = int(r.Persons)
	out.Children = 0
	out.TotalRoomsBooked = 1
	out.Months = 1
	if r.Months != nil {
		out.Months = int(*r.Months)
	}
	out.TotalDaysAtStay = out.Months
	out.RoomPricePerDay = decimal.Zero
	out.RoomType = strings.TrimSpace(r.SelectedRoomType)
	if r.RoomType != nil {
		out.RoomType = strings.TrimSpace(*r.RoomType)
	}
	out.RoomPricePerMonth = r.SelectedRoomPrice.Decimal
	if r.RoomPricePerMonth != nil {
		out.RoomPricePerMonth = r.RoomPricePerMonth.Decimal
	}
	if out.RoomPricePerMonth.IsZero() {
		out.RoomPricePerMonth = r.MonthlyPrice.Decimal
	}
	out.AllDaysPrice = r.AllMonthsPrice.Decimal
	if r.AllDaysPrice != nil {
		out.AllDaysPrice = r.AllDaysPrice.Decimal
	}
	return out, nil
}

func (c commonFields) normalize() (NewBooking, error) {
	out := NewBooking{
		PartnerID:            strings.TrimSpace(c.PartnerID),
		HotelID:              strings.TrimSpace(c.HotelID),
		HotelName:            strings.TrimSpace(c.HotelName),
		HotelAddress:         strings.TrimSpace(c.HotelAddress),
		HotelContact:         strings.TrimSpace(c.HotelContact),
		UserID:               strings.TrimSpace(c.UserID),
		GuestName:            strings.TrimSpace(c.GuestName),
		Email:                strings.TrimSpace(c.Email),
		OriginalAmount:       c.OriginalTotalPrice.Decimal,
		FinalPayableAmount:   c.FinalPayableAmount.Decimal,
		AmountPaidOnline:     c.AmountPaidOnline.Decimal,
		DueAmountAtHotel:     c.DueAmountAtHotel.Decimal,
		GST:                  c.GST.Decimal,
		PaymentMethod:        strings.TrimSpace(c.PaymentMethodType),
		PaidVia:              strings.TrimSpace(c.PaidVia),
		PaymentStatus:        strings.TrimSpace(c.PaymentStatus),
		TransactionID:        strings.TrimSpace(c.TransactionID),
		WalletRequested:      bool(c.WalletUsed),
		WalletAmount:         c.WalletAmount.Decimal,
		CouponCode:           strings.TrimSpace(c.CouponCode),
		CouponDiscountAmount: c.CouponDiscountAmount.Decimal,
	}
	if c.TotalPrice != nil {
		out.OriginalAmount = c.TotalPrice.Decimal
	}
	if out.PaymentMethod == "" {
		out.PaymentMethod = strings.TrimSpace(c.PaymentType)
	}

	switch {
	case out.UserID == "":
		return NewBooking{}, pkgerrors.New(pkgerrors.CodeValidation, "User_ID is required")
	case out.PartnerID == "":
		return NewBooking{}, pkgerrors.New(pkgerrors.CodeValidation, "Partner_ID is required")
	case out.HotelID == "":
		return NewBooking{}, pkgerrors.New(pkgerrors.CodeValidation, "Hotel_ID is required")
	}

	checkIn, ok, err := ParseDate(c.CheckInDate)
	if err != nil {
		return NewBooking{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid Check_In_Date")
	}
	if !ok {
		return NewBooking{}, pkgerrors.New(pkgerrors.CodeValidation, "Check_In_Date is required")
	}
	out.CheckIn = checkIn

	checkOut, ok, err := ParseDate(c.CheckOutDate)
	if err != nil {
		return NewBooking{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid Check_Out_Date")
	}
	if ok {
		if checkOut.Before(checkIn) {
			return NewBooking{}, pkgerrors.Invalid(pkgerrors.ReasonInvalidRange, "check-out must not precede check-in")
		}
		out.CheckOut = &checkOut
	}

	if out.OriginalAmount.IsNegative() || out.FinalPayableAmount.IsNegative() {
		return NewBooking{}, pkgerrors.New(pkgerrors.CodeValidation, "amounts must not be negative")
	}
	return out, nil
}

// count decodes integers sent as numbers or numeric strings. Anything else is 0.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	n, err := strconv.Atoi(raw)
	if err != nil {
		*c = 0
		return nil
	}
	*c = count(n)
	return nil
}

// flag decodes "Yes"/"No" strings as well as JSON booleans.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	raw := strings.ToLower(strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(data)), `"`)))
	*f = flag(raw == "yes" || raw == "true" || raw == "1")
	return nil
}

package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	"github.com/angelmondragon/staybook-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

type createOrderRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"positive"`
}

// PaymentCreateOrder opens a gateway order for the client checkout.
func PaymentCreateOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

// verifyPaymentRequest mirrors the checkout client's confirmation payload.
// User, partner and hotel ids are accepted but the booking row is the
// source of truth for them.
type verifyPaymentRequest struct {
	BookingID          string        `json:"Booking_ID" validate:"required"`
	UserID             string        `json:"User_ID"`
	PartnerID          string        `json:"Partner_ID"`
	HotelID            string        `json:"Hotel_ID"`
	GatewayOrderID     string        `json:"Gateway_Order_ID" validate:"required"`
	GatewayPaymentID   string        `json:"Gateway_Payment_ID"`
	GatewaySignature   string        `json:"Gateway_Signature"`
	FinalPayableAmount money.Lenient `json:"Final_Payable_Amount"`
}

// PaymentVerify records the client's checkout result. A bad signature is
// recorded as a Failed attempt and still answers 200.
func PaymentVerify(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.VerifyClientConfirmation(r.Context(), payments.Confirmation{
			BookingID: payload.BookingID,
			OrderID:   payload.GatewayOrderID,
			PaymentID: payload.GatewayPaymentID,
			Signature: payload.GatewaySignature,
			Amount:    payload.FinalPayableAmount.Decimal,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func BookingPaymentAttempts(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListBookingAttempts(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payments.ToAttemptDTOs(rows))
	}
}

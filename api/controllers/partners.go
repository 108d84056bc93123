package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	bookingsvc "github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

func PartnerBookings(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListPartnerBookings(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTOs(rows))
	}
}

type bookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PartnerBookingStatus moves one of the partner's bookings along the
// lifecycle.
func PartnerBookingStatus(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := enums.ParseBookingStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking status"))
			return
		}

		booking, err := svc.TransitionBookingStatus(r.Context(), partnerID, bookingID, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTO(*booking))
	}
}

func PartnerFinanceSummary(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetPartnerFinanceSummary(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type bankDetailsRequest struct {
	AccountHolderName string `json:"account_holder_name" validate:"required,max=120"`
	BankName          string `json:"bank_name" validate:"required,max=120"`
	AccountNumber     string `json:"account_number" validate:"required,max=34"`
	IFSCSwift         string `json:"ifsc_swift" validate:"required,max=20"`
	AccountType       string `json:"account_type" validate:"max=40"`
	PANTaxID          string `json:"pan_tax_id" validate:"required,max=20"`
	PayoutType        string `json:"payout_type" validate:"required"`
}

func PartnerBankDetails(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload bankDetailsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpdateBankDetails(r.Context(), finance.BankDetails{
			PartnerID:         partnerID,
			AccountHolderName: payload.AccountHolderName,
			BankName:          payload.BankName,
			AccountNumber:     payload.AccountNumber,
			IFSCSwift:         payload.IFSCSwift,
			AccountType:       payload.AccountType,
			PANTaxID:          payload.PANTaxID,
			PayoutType:        payload.PayoutType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, finance.ToBankDetails(*row))
	}
}

func PartnerNotificationViewed(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkNotificationViewed(r.Context(), partnerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"notification_viewed": true})
	}
}

type payoutRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"positive"`
	Comment string          `json:"comment" validate:"max=255"`
}

// PartnerRequestPayout files a withdrawal against the partner's available
// net revenue.
func PartnerRequestPayout(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload payoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RequestPayout(r.Context(), partnerID, payload.Amount, payload.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, result)
	}
}

func PartnerPayouts(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListTransactions(r.Context(), partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, finance.ToTransactionDTOs(rows))
	}
}

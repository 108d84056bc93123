package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	bookingsvc "github.com/angelmondragon/staybook-backend/internal/bookings"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

const bookingBodyLimit = 64 << 10

type createBookingResponse struct {
	BookingID string                `json:"booking_id"`
	Booking   bookingsvc.BookingDTO `json:"booking"`
}

// BookingCreate accepts either a hotel or a PG booking payload.
func BookingCreate(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		raw, err := validators.ReadBody(r, bookingBodyLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req, err := bookingsvc.ParseRequest(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.CreateBooking(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, createBookingResponse{
			BookingID: booking.ID,
			Booking:   bookingsvc.ToBookingDTO(*booking),
		})
	}
}

func BookingGet(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTO(*booking))
	}
}

// UserBookingHistory lists a guest's stays. upcoming=true keeps stays that
// have not checked out yet; the default lists past stays.
func UserBookingHistory(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		upcoming, err := validators.ParseQueryBool(r, "upcoming", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListUserHistory(r.Context(), userID, upcoming, bookingsvc.DateOnly(time.Now().UTC()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTOs(rows))
	}
}

type updateDatesRequest struct {
	CheckInDate  string `json:"check_in_date" validate:"required"`
	CheckOutDate string `json:"check_out_date" validate:"required"`
}

func BookingUpdateDates(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDatesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkIn, err := parseStayDate("check_in_date", payload.CheckInDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkOut, err := parseStayDate("check_out_date", payload.CheckOutDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.UpdateBookingDates(r.Context(), id, checkIn, checkOut)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTO(*booking))
	}
}

func BookingCancel(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := svc.CancelBooking(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTO(*booking))
	}
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

func BookingUpdatePaymentStatus(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload paymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := svc.UpdatePaymentStatus(r.Context(), id, payload.PaymentStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToBookingDTO(*booking))
	}
}

func parseStayDate(field, value string) (time.Time, error) {
	t, ok, err := bookingsvc.ParseDate(value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": field})
	}
	if !ok {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date required").WithDetails(map[string]any{"field": field})
	}
	return t, nil
}

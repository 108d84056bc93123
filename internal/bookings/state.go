package bookings

import (
	"time"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

var partnerTransitions = map[enums.BookingStatus][]enums.BookingStatus{
	enums.BookingStatusPending:   {enums.BookingStatusConfirmed, enums.BookingStatusCancelled},
	enums.BookingStatusConfirmed: {enums.BookingStatusCancelled, enums.BookingStatusCompleted},
}

// CanTransition applies the partner status matrix. Completion additionally
// requires the stay to have ended on or before today.
func CanTransition(b models.Booking, to enums.BookingStatus, today time.Time) error {
	allowed := false
	for _, next := range partnerTransitions[b.BookingStatus] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return pkgerrors.Refuse(pkgerrors.ReasonActionNotAllowed,
			"cannot move booking from "+string(b.BookingStatus)+" to "+string(to))
	}
	if to == enums.BookingStatusCompleted {
		if b.CheckOutDate == nil || DateOnly(*b.CheckOutDate).After(DateOnly(today)) {
			return pkgerrors.Refuse(pkgerrors.ReasonActionNotAllowed, "booking cannot be completed before check-out")
		}
	}
	return nil
}

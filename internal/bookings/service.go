package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/internal/coupons"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/metrics"
	"github.com/angelmondragon/staybook-backend/pkg/money"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/outbox/payloads"
)

const offlineTransactionID = "NA"

var errIDTaken = errors.New("booking id already taken")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// WalletDebiter spends wallet balance inside the booking transaction.
type WalletDebiter interface {
	ApplyWalletDebit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) (decimal.Decimal, error)
}

// CouponRedeemer validates and records coupon redemptions.
type CouponRedeemer interface {
	ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error)
	RecordCouponUsage(ctx context.Context, tx *gorm.DB, userID, code string) error
}

// Service is the booking engine.
type Service interface {
	CreateBooking(ctx context.Context, req Request) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	ListPartnerBookings(ctx context.Context, partnerID string) ([]models.Booking, error)
	ListUserHistory(ctx context.Context, userID string, upcoming bool, today time.Time) ([]models.Booking, error)
	UpdateBookingDates(ctx context.Context, id string, checkIn, checkOut time.Time) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
	TransitionBookingStatus(ctx context.Context, partnerID, id string, to enums.BookingStatus) (*models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) (*models.Booking, error)
	CompleteElapsed(ctx context.Context, today time.Time, limit int) (*CompletionResult, error)
}

// CompletionResult summarises a CompleteElapsed sweep.
type CompletionResult struct {
	Completed []string
	Failed    map[string]error
}

type service struct {
	repo                 Repository
	tx                   txRunner
	outbox               outboxPublisher
	wallets              WalletDebiter
	coupons              CouponRedeemer
	ledger               *metrics.LedgerMetrics
	allowCancelCompleted bool
	newID                IDGenerator
	now                  func() time.Time
}

// NewService builds the booking engine.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, wallets WalletDebiter, coupons CouponRedeemer, cfg config.BookingConfig, ledger *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	return &service{
		repo:                 repo,
		tx:                   tx,
		outbox:               outbox,
		wallets:              wallets,
		coupons:              coupons,
		ledger:               ledger,
		allowCancelCompleted: cfg.AllowCancelCompleted,
		newID:                RandomID,
		now:                  time.Now,
	}, nil
}

func (s *service) CreateBooking(ctx context.Context, req Request) (*models.Booking, error) {
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking payload required")
	}
	input, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	now := s.now()
	method := input.PaymentMethodType()
	offline := method == enums.PaymentMethodOffline

	transactionID := input.TransactionID
	if transactionID == "" {
		if offline {
			transactionID = offlineTransactionID
		} else {
			transactionID = provisionalTransactionID(now)
		}
	}

	couponCode := ""
	couponDiscount := decimal.Zero
	walletRequested := decimal.Zero
	if !offline {
		if input.WalletRequested && input.WalletAmount.IsPositive() {
			walletRequested = input.WalletAmount
		}
		if input.CouponCode != "" {
			validation, err := s.coupons.ValidateCoupon(ctx, input.UserID, input.CouponCode, input.OriginalAmount)
			if err != nil {
				return nil, err
			}
			if !validation.Valid {
				return nil, pkgerrors.Refuse(pkgerrors.ReasonCouponInvalid, validation.Message)
			}
			couponCode = validation.Code
			couponDiscount = validation.DiscountAmount
		}
	}

	var created *models.Booking
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate booking id")
		}
		booking := buildBooking(id, input, method, transactionID, couponCode, couponDiscount)

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			taken, err := repo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check booking id")
			}
			if taken {
				return errIDTaken
			}

			if walletRequested.IsPositive() {
				debited, err := s.wallets.ApplyWalletDebit(ctx, tx, wallet.DebitInput{
					UserID:          input.UserID,
					BookingID:       id,
					RequestedAmount: walletRequested,
					OriginalAmount:  input.OriginalAmount,
				})
				if err != nil {
					return err
				}
				booking.WalletUsed = debited.IsPositive()
				booking.WalletAmountDeducted = debited
			}

			if err := repo.Create(ctx, booking); err != nil {
				if db.IsUniqueViolation(err, "") {
					return errIDTaken
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert booking")
			}

			if couponCode != "" {
				if err := s.coupons.RecordCouponUsage(ctx, tx, input.UserID, couponCode); err != nil {
					return err
				}
			}

			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBookingCreated,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Actor:         &outbox.ActorRef{UserID: booking.UserID, Role: "guest"},
				Data: payloads.BookingCreatedEvent{
					BookingID:            booking.ID,
					PartnerID:            booking.PartnerID,
					HotelID:              booking.HotelID,
					UserID:               booking.UserID,
					HotelType:            booking.HotelType,
					PaymentMethodType:    booking.PaymentMethodType,
					PaymentStatus:        booking.PaymentStatus,
					OriginalAmount:       booking.OriginalAmount,
					FinalPayableAmount:   booking.FinalPayableAmount,
					WalletAmountDeducted: booking.WalletAmountDeducted,
					CouponCode:           booking.CouponCode,
					CouponDiscountAmount: booking.CouponDiscountAmount,
				},
			})
		})
		if errors.Is(err, errIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		created = booking
		break
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a booking id")
	}
	s.ledger.IncBookingTransition(string(created.BookingStatus))
	return created, nil
}

func buildBooking(id string, in NewBooking, method enums.PaymentMethodType, transactionID, couponCode string, couponDiscount decimal.Decimal) *models.Booking {
	return &models.Booking{
		ID:                   id,
		PartnerID:            in.PartnerID,
		HotelID:              in.HotelID,
		HotelName:            in.HotelName,
		HotelType:            in.HotelType,
		HotelAddress:         in.HotelAddress,
		HotelContact:         in.HotelContact,
		UserID:               in.UserID,
		GuestName:            in.GuestName,
		Email:                in.Email,
		CheckInDate:          in.CheckIn,
		CheckOutDate:         in.CheckOut,
		GuestCount:           in.GuestCount,
		Adults:               in.Adults,
		Children:             in.Children,
		TotalRoomsBooked:     in.TotalRoomsBooked,
		TotalDaysAtStay:      in.TotalDaysAtStay,
		Months:               in.Months,
		RoomType:             in.RoomType,
		RoomPricePerDay:      money.Round(in.RoomPricePerDay),
		RoomPricePerMonth:    money.Round(in.RoomPricePerMonth),
		AllDaysPrice:         money.Round(in.AllDaysPrice),
		GST:                  money.Round(in.GST),
		OriginalAmount:       money.Round(in.OriginalAmount),
		FinalPayableAmount:   money.Round(in.FinalPayableAmount),
		AmountPaidOnline:     money.Round(in.AmountPaidOnline),
		DueAmountAtHotel:     money.Round(in.DueAmountAtHotel),
		PaymentMethodType:    method,
		PaidVia:              in.PaidVia,
		PaymentStatus:        enums.NormalizePaymentStatus(in.PaymentStatus),
		BookingStatus:        enums.BookingStatusPending,
		TransactionID:        transactionID,
		WalletAmountDeducted: decimal.Zero,
		CouponCode:           couponCode,
		CouponDiscountAmount: couponDiscount,
		RefundStatus:         enums.RefundStatusNone,
		Version:              1,
	}
}

func (s *service) Get(ctx context.Context, id string) (*models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return booking, nil
}

func (s *service) ListPartnerBookings(ctx context.Context, partnerID string) ([]models.Booking, error) {
	if strings.TrimSpace(partnerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner id required")
	}
	rows, err := s.repo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner bookings")
	}
	return rows, nil
}

// ListUserHistory splits a user's bookings into upcoming stays and past ones.
func (s *service) ListUserHistory(ctx context.Context, userID string, upcoming bool, today time.Time) ([]models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user bookings")
	}
	day := DateOnly(today)
	out := make([]models.Booking, 0, len(rows))
	for _, b := range rows {
		include := isPast(b, day)
		if upcoming {
			include = isUpcoming(b, day)
		}
		if include {
			out = append(out, b)
		}
	}
	return out, nil
}

func isUpcoming(b models.Booking, day time.Time) bool {
	if b.BookingStatus != enums.BookingStatusPending && b.BookingStatus != enums.BookingStatusConfirmed {
		return false
	}
	return !DateOnly(b.CheckInDate).Before(day)
}

func isPast(b models.Booking, day time.Time) bool {
	switch {
	case b.CheckOutDate != nil && DateOnly(*b.CheckOutDate).Before(day):
		return true
	case b.CheckOutDate == nil && DateOnly(b.CheckInDate).Before(day):
		return true
	}
	return b.BookingStatus == enums.BookingStatusCompleted || b.BookingStatus == enums.BookingStatusCancelled
}

// UpdateBookingDates moves the stay and reprices it from the nightly rate.
// A date change voids any prior confirmation.
func (s *service) UpdateBookingDates(ctx context.Context, id string, checkIn, checkOut time.Time) (*models.Booking, error) {
	checkIn, checkOut = DateOnly(checkIn), DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, pkgerrors.Invalid(pkgerrors.ReasonInvalidRange, "check-out must be after check-in")
	}

	var updated *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		if booking.BookingStatus == enums.BookingStatusCancelled || booking.BookingStatus == enums.BookingStatusCompleted {
			return pkgerrors.Refuse(pkgerrors.ReasonActionNotAllowed, "dates cannot change on a "+strings.ToLower(string(booking.BookingStatus))+" booking")
		}

		nights := int(checkOut.Sub(checkIn).Hours() / 24)
		final := money.Round(booking.RoomPricePerDay.Mul(decimal.NewFromInt(int64(nights))).Add(booking.GST))
		from := booking.BookingStatus

		ok, err := repo.UpdateVersioned(ctx, booking.ID, booking.Version, map[string]any{
			"check_in_date":        checkIn,
			"check_out_date":       checkOut,
			"total_days_at_stay":   nights,
			"final_payable_amount": final,
			"booking_status":       enums.BookingStatusPending,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking dates")
		}
		if !ok {
			return staleBooking()
		}

		booking.CheckInDate = checkIn
		booking.CheckOutDate = &checkOut
		booking.TotalDaysAtStay = nights
		booking.FinalPayableAmount = final
		booking.BookingStatus = enums.BookingStatusPending
		booking.Version++

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingDatesChanged,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingDatesChangedEvent{
				BookingID:          booking.ID,
				CheckInDate:        checkIn.Format(DateLayout),
				CheckOutDate:       checkOut.Format(DateLayout),
				Nights:             nights,
				FinalPayableAmount: final,
			},
		}); err != nil {
			return err
		}
		if err := s.emitStatusChange(ctx, tx, booking, from); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelBooking cancels and flags the refund. Cancelling twice is a no-op.
func (s *service) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		if booking.BookingStatus == enums.BookingStatusCancelled {
			result = booking
			return nil
		}
		if booking.BookingStatus == enums.BookingStatusCompleted && !s.allowCancelCompleted {
			return pkgerrors.Refuse(pkgerrors.ReasonActionNotAllowed, "completed bookings cannot be cancelled")
		}

		from := booking.BookingStatus
		ok, err := repo.UpdateVersioned(ctx, booking.ID, booking.Version, map[string]any{
			"booking_status": enums.BookingStatusCancelled,
			"refund_status":  enums.RefundStatusInitiated,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
		}
		if !ok {
			return staleBooking()
		}
		booking.BookingStatus = enums.BookingStatusCancelled
		booking.RefundStatus = enums.RefundStatusInitiated
		booking.Version++

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCancelled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{UserID: booking.UserID, Role: "guest"},
			Data: payloads.BookingCancelledEvent{
				BookingID:    booking.ID,
				PartnerID:    booking.PartnerID,
				UserID:       booking.UserID,
				RefundStatus: booking.RefundStatus,
				CancelledAt:  s.now().UTC(),
			},
		}); err != nil {
			return err
		}
		if err := s.emitStatusChange(ctx, tx, booking, from); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransitionBookingStatus applies a partner-initiated status change.
func (s *service) TransitionBookingStatus(ctx context.Context, partnerID, id string, to enums.BookingStatus) (*models.Booking, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.transition(ctx, tx, id, to, s.now(), func(b *models.Booking) error {
			if partnerID != "" && b.PartnerID != partnerID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return nil
		})
		result = booking
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, id string, to enums.BookingStatus, today time.Time, check func(*models.Booking) error) (*models.Booking, error) {
	repo := s.repo.WithTx(tx)
	booking, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	if check != nil {
		if err := check(booking); err != nil {
			return nil, err
		}
	}
	if err := CanTransition(*booking, to, today); err != nil {
		return nil, err
	}

	from := booking.BookingStatus
	ok, err := repo.UpdateVersioned(ctx, booking.ID, booking.Version, map[string]any{"booking_status": to})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
	}
	if !ok {
		return nil, staleBooking()
	}
	booking.BookingStatus = to
	booking.Version++
	if err := s.emitStatusChange(ctx, tx, booking, from); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdatePaymentStatus stores a normalized payment status. PAID also confirms
// a pending booking.
func (s *service) UpdatePaymentStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	normalized := enums.NormalizePaymentStatus(status)
	var result *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		from := booking.BookingStatus
		updates := map[string]any{"payment_status": normalized}
		if normalized == enums.PaymentStatusPaid && from == enums.BookingStatusPending {
			updates["booking_status"] = enums.BookingStatusConfirmed
		}
		ok, err := repo.UpdateVersioned(ctx, booking.ID, booking.Version, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		if !ok {
			return staleBooking()
		}
		booking.PaymentStatus = normalized
		if next, ok := updates["booking_status"].(enums.BookingStatus); ok {
			booking.BookingStatus = next
		}
		booking.Version++
		if err := s.emitStatusChange(ctx, tx, booking, from); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteElapsed completes confirmed bookings whose check-out has passed.
// Each booking commits on its own so one failure does not hold back the rest.
func (s *service) CompleteElapsed(ctx context.Context, today time.Time, limit int) (*CompletionResult, error) {
	candidates, err := s.repo.ListCompletable(ctx, today, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list completable bookings")
	}
	result := &CompletionResult{Failed: map[string]error{}}
	for _, b := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.transition(ctx, tx, b.ID, enums.BookingStatusCompleted, today, nil)
			return err
		})
		if err != nil {
			result.Failed[b.ID] = err
			continue
		}
		result.Completed = append(result.Completed, b.ID)
	}
	return result, nil
}

func (s *service) emitStatusChange(ctx context.Context, tx *gorm.DB, booking *models.Booking, from enums.BookingStatus) error {
	if booking.BookingStatus == from {
		return nil
	}
	s.ledger.IncBookingTransition(string(booking.BookingStatus))
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventBookingStatusChanged,
		AggregateType: enums.AggregateBooking,
		AggregateID:   booking.ID,
		Data: payloads.BookingStatusChangedEvent{
			BookingID: booking.ID,
			PartnerID: booking.PartnerID,
			From:      from,
			To:        booking.BookingStatus,
			Version:   booking.Version,
		},
	})
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
}

func staleBooking() error {
	return pkgerrors.StateConflict(pkgerrors.ReasonStaleBooking, "booking was modified concurrently; reload and retry")
}

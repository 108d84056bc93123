package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/metrics"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/staybook-backend/pkg/razorpay"
)

const (
	failureSignatureMismatch = "signature mismatch"
	paymentMethodOnline      = "Online"

	maxAttemptNumbering = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service reconciles gateway payments against bookings.
type Service interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*Order, error)
	VerifyClientConfirmation(ctx context.Context, in Confirmation) (*Result, error)
	ApplyGatewayCapture(ctx context.Context, in Capture) (*CaptureResult, error)
	RecordGatewayFailure(ctx context.Context, in Capture) (*CaptureResult, error)
	ListBookingAttempts(ctx context.Context, bookingID string) ([]models.PaymentTransaction, error)
}

// Order is a gateway order the client completes checkout against.
type Order struct {
	OrderID          string          `json:"order_id"`
	PublicKey        string          `json:"razorpay_key_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentRecordRef string          `json:"payment_record_ref"`
}

// Confirmation is the client's report of a completed checkout.
type Confirmation struct {
	BookingID string
	OrderID   string
	PaymentID string
	Signature string
	Amount    decimal.Decimal
}

// Capture is a gateway-reported payment outcome.
type Capture struct {
	OrderID   string
	PaymentID string
	Amount    decimal.Decimal
	Method    string
	Reason    string
}

// Result describes the recorded attempt.
type Result struct {
	Status          enums.PaymentAttemptStatus `json:"status"`
	PaymentRecordID uuid.UUID                  `json:"record_id"`
	AttemptNo       int                        `json:"attempt_no"`
	BookingStatus   enums.BookingStatus        `json:"booking_status"`
	Redundant       bool                       `json:"redundant"`
}

// CaptureResult reports whether a gateway event matched a booking.
type CaptureResult struct {
	Matched bool
	Result  *Result
}

type attemptInput struct {
	orderID   string
	paymentID string
	signature string
	method    string
	amount    decimal.Decimal
	status    enums.PaymentAttemptStatus
	reason    string
	source    enums.PaymentSource
}

type service struct {
	repo     Repository
	bookings bookings.Repository
	tx       txRunner
	outbox   outboxPublisher
	gateway  Gateway
	ledger   *metrics.LedgerMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the payment reconciliation service.
func NewService(repo Repository, bookingRepo bookings.Repository, tx txRunner, outbox outboxPublisher, gateway Gateway, ledger *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if bookingRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:     repo,
		bookings: bookingRepo,
		tx:       tx,
		outbox:   outbox,
		gateway:  gateway,
		ledger:   ledger,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// CreateOrder opens a gateway order. Nothing is persisted until the client
// confirms the payment.
func (s *service) CreateOrder(ctx context.Context, amount decimal.Decimal) (*Order, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	ref := uuid.New()
	order, err := s.gateway.CreateOrder(ctx, amount, "rcpt_"+strings.ReplaceAll(ref.String(), "-", "")[:20])
	if err != nil {
		if errors.Is(err, razorpay.ErrGatewayUnavailable) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}
	currency := order.Currency
	if currency == "" {
		currency = s.gateway.Currency()
	}
	return &Order{
		OrderID:          order.ID,
		PublicKey:        s.gateway.KeyID(),
		Amount:           order.Amount,
		Currency:         currency,
		PaymentRecordRef: ref.String(),
	}, nil
}

// VerifyClientConfirmation checks the checkout signature and records the
// attempt. A bad signature is recorded as a Failed attempt, not returned as
// an error.
func (s *service) VerifyClientConfirmation(ctx context.Context, in Confirmation) (*Result, error) {
	in.BookingID = strings.TrimSpace(in.BookingID)
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.BookingID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Booking_ID is required")
	}
	if in.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Gateway_Order_ID is required")
	}

	attempt := attemptInput{
		orderID:   in.OrderID,
		paymentID: strings.TrimSpace(in.PaymentID),
		signature: in.Signature,
		method:    paymentMethodOnline,
		amount:    in.Amount,
		status:    enums.PaymentAttemptPaid,
		source:    enums.PaymentSourceClient,
	}
	if err := s.gateway.VerifyPaymentSignature(in.OrderID, attempt.paymentID, in.Signature); err != nil {
		attempt.status = enums.PaymentAttemptFailed
		attempt.reason = failureSignatureMismatch
		if !errors.Is(err, razorpay.ErrSignatureMismatch) {
			attempt.reason = err.Error()
		}
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookings.WithTx(tx).FindByID(ctx, in.BookingID)
		if err != nil {
			return mapBookingError(err)
		}
		result, err = s.record(ctx, tx, booking, attempt)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.ledger.IncPaymentAttempt(string(result.Status), string(attempt.source))
	return result, nil
}

// ApplyGatewayCapture records a gateway-captured payment. Events for orders
// that match no booking are ignored.
func (s *service) ApplyGatewayCapture(ctx context.Context, in Capture) (*CaptureResult, error) {
	return s.applyGatewayEvent(ctx, in, enums.PaymentAttemptPaid)
}

// RecordGatewayFailure records a gateway-reported failed payment.
func (s *service) RecordGatewayFailure(ctx context.Context, in Capture) (*CaptureResult, error) {
	return s.applyGatewayEvent(ctx, in, enums.PaymentAttemptFailed)
}

func (s *service) applyGatewayEvent(ctx context.Context, in Capture, status enums.PaymentAttemptStatus) (*CaptureResult, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		return &CaptureResult{}, nil
	}
	attempt := attemptInput{
		orderID:   in.OrderID,
		paymentID: strings.TrimSpace(in.PaymentID),
		method:    in.Method,
		amount:    in.Amount,
		status:    status,
		reason:    in.Reason,
		source:    enums.PaymentSourceWebhook,
	}
	if attempt.method == "" {
		attempt.method = paymentMethodOnline
	}
	if status == enums.PaymentAttemptFailed && attempt.reason == "" {
		attempt.reason = "payment failed at gateway"
	}

	out := &CaptureResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bookingID, err := s.repo.WithTx(tx).FindBookingIDByOrder(ctx, in.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match gateway order")
		}
		booking, err := s.bookings.WithTx(tx).FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return mapBookingError(err)
		}
		result, err := s.record(ctx, tx, booking, attempt)
		if err != nil {
			return err
		}
		out.Matched = true
		out.Result = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Matched {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "gateway_order_id", in.OrderID), "gateway event matched no booking")
		}
		return out, nil
	}
	s.ledger.IncPaymentAttempt(string(out.Result.Status), string(attempt.source))
	return out, nil
}

func (s *service) ListBookingAttempts(ctx context.Context, bookingID string) ([]models.PaymentTransaction, error) {
	rows, err := s.repo.ListAttempts(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment attempts")
	}
	return rows, nil
}

// record appends the attempt and applies its booking side-effect inside tx.
func (s *service) record(ctx context.Context, tx *gorm.DB, booking *models.Booking, in attemptInput) (*Result, error) {
	amount := in.amount
	if !amount.IsPositive() {
		amount = booking.FinalPayableAmount
	}
	attempt := &models.PaymentTransaction{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		PartnerID:        booking.PartnerID,
		HotelID:          booking.HotelID,
		Gateway:          razorpay.GatewayName,
		GatewayOrderID:   in.orderID,
		GatewayPaymentID: in.paymentID,
		GatewaySignature: in.signature,
		PaymentMethod:    in.method,
		Currency:         s.gateway.Currency(),
		PaymentStatus:    in.status,
		Amount:           amount,
		Source:           in.source,
		RefundAmount:     decimal.Zero,
		CreatedAt:        s.now().UTC(),
	}
	if in.reason != "" {
		reason := in.reason
		attempt.FailureReason = &reason
	}
	if err := s.insertAttempt(ctx, tx, attempt); err != nil {
		return nil, err
	}

	from := booking.BookingStatus
	redundant := booking.PaymentStatus == enums.PaymentStatusPaid
	if err := s.applyToBooking(ctx, tx, booking, attempt, redundant); err != nil {
		return nil, err
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentRecorded,
		AggregateType: enums.AggregatePayment,
		AggregateID:   attempt.ID.String(),
		Data: payloads.PaymentRecordedEvent{
			PaymentRecordID:  attempt.ID,
			BookingID:        booking.ID,
			AttemptNo:        attempt.AttemptNo,
			Status:           attempt.PaymentStatus,
			Source:           attempt.Source,
			GatewayOrderID:   attempt.GatewayOrderID,
			GatewayPaymentID: attempt.GatewayPaymentID,
			Amount:           attempt.Amount,
			FailureReason:    in.reason,
			BookingConfirmed: from != enums.BookingStatusConfirmed && booking.BookingStatus == enums.BookingStatusConfirmed,
		},
	}); err != nil {
		return nil, err
	}
	if booking.BookingStatus != from {
		s.ledger.IncBookingTransition(string(booking.BookingStatus))
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
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
		}); err != nil {
			return nil, err
		}
	}

	return &Result{
		Status:          attempt.PaymentStatus,
		PaymentRecordID: attempt.ID,
		AttemptNo:       attempt.AttemptNo,
		BookingStatus:   booking.BookingStatus,
		Redundant:       redundant,
	}, nil
}

// insertAttempt numbers the attempt after the rows already stored. A
// concurrent confirmation that took the same number is retried under a
// savepoint so the attempt row is never lost.
func (s *service) insertAttempt(ctx context.Context, tx *gorm.DB, attempt *models.PaymentTransaction) error {
	for try := 1; ; try++ {
		count, err := s.repo.WithTx(tx).CountAttempts(ctx, attempt.BookingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payment attempts")
		}
		attempt.AttemptNo = count + 1

		err = tx.Transaction(func(sp *gorm.DB) error {
			return s.repo.WithTx(sp).InsertAttempt(ctx, attempt)
		})
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "") || try >= maxAttemptNumbering {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert payment attempt")
		}
	}
}

// applyToBooking points the booking at the new attempt. A redundant attempt on
// a PAID booking only moves last_payment_record_id (and transaction_id when it
// was itself paid); payment and booking status stay as they are.
func (s *service) applyToBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking, attempt *models.PaymentTransaction, redundant bool) error {
	paymentStatus := attempt.PaymentStatus.BookingPaymentStatus()
	transactionID := attempt.GatewayPaymentID
	if transactionID == "" {
		transactionID = attempt.GatewayOrderID
	}

	updates := map[string]any{"last_payment_record_id": attempt.ID}
	next := booking.BookingStatus
	switch {
	case redundant:
		paymentStatus = booking.PaymentStatus
		if attempt.PaymentStatus != enums.PaymentAttemptPaid {
			transactionID = booking.TransactionID
		}
	case paymentStatus == enums.PaymentStatusPaid && booking.BookingStatus == enums.BookingStatusPending:
		next = enums.BookingStatusConfirmed
	case paymentStatus == enums.PaymentStatusFailed && booking.BookingStatus == enums.BookingStatusConfirmed && booking.PaymentMethodType == enums.PaymentMethodOnline:
		next = enums.BookingStatusPending
	}
	updates["transaction_id"] = transactionID
	if !redundant {
		updates["payment_status"] = paymentStatus
		updates["booking_status"] = next
		if paymentStatus == enums.PaymentStatusPaid {
			updates["amount_paid_online"] = attempt.Amount
		}
	}

	ok, err := s.bookings.WithTx(tx).UpdateVersioned(ctx, booking.ID, booking.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking payment")
	}
	if !ok {
		return pkgerrors.StateConflict(pkgerrors.ReasonStaleBooking, "booking was modified concurrently; reload and retry")
	}

	id := attempt.ID
	booking.PaymentStatus = paymentStatus
	booking.TransactionID = transactionID
	booking.LastPaymentRecordID = &id
	booking.BookingStatus = next
	booking.Version++
	return nil
}

func mapBookingError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
}

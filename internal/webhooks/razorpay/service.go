package razorpaywebhook

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/staybook-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/metrics"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// Event is the gateway webhook envelope.
type Event struct {
	Event     string  `json:"event"`
	AccountID string  `json:"account_id"`
	Payload   Payload `json:"payload"`
	CreatedAt int64   `json:"created_at"`
}

type Payload struct {
	Payment struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment"`
}

// PaymentEntity carries the payment fields of an event. Amount is in paise.
type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type paymentRecorder interface {
	ApplyGatewayCapture(ctx context.Context, in payments.Capture) (*payments.CaptureResult, error)
	RecordGatewayFailure(ctx context.Context, in payments.Capture) (*payments.CaptureResult, error)
}

type Service struct {
	payments paymentRecorder
	ledger   *metrics.LedgerMetrics
}

func NewService(recorder paymentRecorder, ledger *metrics.LedgerMetrics) (*Service, error) {
	if recorder == nil {
		return nil, errors.New("payments service required")
	}
	return &Service{payments: recorder, ledger: ledger}, nil
}

// HandleEvent applies captured and failed payments; other events are
// acknowledged without effect.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}

	var (
		out *payments.CaptureResult
		err error
	)
	entity := event.Payload.Payment.Entity
	switch event.Event {
	case EventPaymentCaptured:
		out, err = s.payments.ApplyGatewayCapture(ctx, captureFrom(entity))
	case EventPaymentFailed:
		capture := captureFrom(entity)
		capture.Reason = failureReason(entity)
		out, err = s.payments.RecordGatewayFailure(ctx, capture)
	default:
		s.ledger.IncWebhook(event.Event, "ignored")
		return nil
	}
	if err != nil {
		s.ledger.IncWebhook(event.Event, "error")
		return err
	}
	if out == nil || !out.Matched {
		s.ledger.IncWebhook(event.Event, "unmatched")
		return nil
	}
	s.ledger.IncWebhook(event.Event, "applied")
	return nil
}

// EventID falls back to the payment id when the delivery header is absent.
func EventID(header string, event *Event) string {
	if id := strings.TrimSpace(header); id != "" {
		return id
	}
	if event == nil {
		return ""
	}
	id := event.Payload.Payment.Entity.ID
	if id == "" {
		return ""
	}
	return event.Event + ":" + id
}

func captureFrom(entity PaymentEntity) payments.Capture {
	return payments.Capture{
		OrderID:   entity.OrderID,
		PaymentID: entity.ID,
		Amount:    money.FromMinorUnits(entity.Amount),
		Method:    entity.Method,
	}
}

func failureReason(entity PaymentEntity) string {
	switch {
	case entity.ErrorDescription != "":
		return entity.ErrorDescription
	case entity.ErrorCode != "":
		return entity.ErrorCode
	default:
		return "payment failed at gateway"
	}
}

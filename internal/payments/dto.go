package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// AttemptDTO is the public shape of a recorded payment attempt. The gateway
// signature is never exposed.
type AttemptDTO struct {
	PaymentRecordID  string                     `json:"payment_record_id"`
	BookingID        string                     `json:"booking_id"`
	AttemptNo        int                        `json:"attempt_no"`
	Gateway          string                     `json:"gateway"`
	GatewayOrderID   string                     `json:"gateway_order_id"`
	GatewayPaymentID string                     `json:"gateway_payment_id"`
	PaymentMethod    string                     `json:"payment_method"`
	PaymentStatus    enums.PaymentAttemptStatus `json:"payment_status"`
	FailureReason    *string                    `json:"failure_reason,omitempty"`
	Amount           decimal.Decimal            `json:"amount"`
	Currency         string                     `json:"currency"`
	Source           enums.PaymentSource        `json:"source"`
	IsRefunded       bool                       `json:"is_refunded"`
	RefundAmount     decimal.Decimal            `json:"refund_amount"`
	CreatedAt        time.Time                  `json:"created_at"`
}

func ToAttemptDTOs(rows []models.PaymentTransaction) []AttemptDTO {
	out := make([]AttemptDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, AttemptDTO{
			PaymentRecordID:  row.ID.String(),
			BookingID:        row.BookingID,
			AttemptNo:        row.AttemptNo,
			Gateway:          row.Gateway,
			GatewayOrderID:   row.GatewayOrderID,
			GatewayPaymentID: row.GatewayPaymentID,
			PaymentMethod:    row.PaymentMethod,
			PaymentStatus:    row.PaymentStatus,
			FailureReason:    row.FailureReason,
			Amount:           row.Amount,
			Currency:         row.Currency,
			Source:           row.Source,
			IsRefunded:       row.IsRefunded,
			RefundAmount:     row.RefundAmount,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out
}

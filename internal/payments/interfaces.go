package payments

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/razorpay"
)

// Repository stores payment attempts and resolves gateway orders to bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountAttempts(ctx context.Context, bookingID string) (int, error)
	InsertAttempt(ctx context.Context, attempt *models.PaymentTransaction) error
	ListAttempts(ctx context.Context, bookingID string) ([]models.PaymentTransaction, error)
	FindBookingIDByOrder(ctx context.Context, orderID string) (string, error)
}

// Gateway is the subset of the payment gateway client the service needs.
type Gateway interface {
	KeyID() string
	Currency() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
}

package finance

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
)

// Repository persists partner finance rows and payout transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindFinance(ctx context.Context, partnerID string) (*models.PartnerFinance, error)
	FindFinanceForUpdate(ctx context.Context, partnerID string) (*models.PartnerFinance, error)
	CreateFinance(ctx context.Context, row *models.PartnerFinance) error
	UpdateFinance(ctx context.Context, partnerID string, updates map[string]any) error
	BankDetailsTaken(ctx context.Context, partnerID, accountNumber, panTaxID string) (bool, error)

	ListPartnerBookings(ctx context.Context, partnerID string) ([]models.Booking, error)
	RecognizedAmounts(ctx context.Context, partnerID string) ([]decimal.Decimal, error)

	InsertTransaction(ctx context.Context, txn *models.PartnerTransaction) error
	FindTransaction(ctx context.Context, partnerID, transactionID string) (*models.PartnerTransaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, status string) error
	ListTransactions(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error)
	CommittedWithdrawals(ctx context.Context, partnerID string) ([]decimal.Decimal, error)
	ListUnreversedFailures(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error)
	ZeroWithdrawal(ctx context.Context, transactionID string) error
}

package finance

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

type amountRow struct {
	Amount decimal.Decimal
}

func amounts(rows []amountRow) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Amount)
	}
	return out
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a finance repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindFinance(ctx context.Context, partnerID string) (*models.PartnerFinance, error) {
	var row models.PartnerFinance
	if err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindFinanceForUpdate(ctx context.Context, partnerID string) (*models.PartnerFinance, error) {
	var row models.PartnerFinance
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("partner_id = ?", partnerID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateFinance(ctx context.Context, row *models.PartnerFinance) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) UpdateFinance(ctx context.Context, partnerID string, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PartnerFinance{}).
		Where("partner_id = ?", partnerID).
		Updates(updates).Error
}

// BankDetailsTaken reports whether another partner already registered the
// account number or PAN.
func (r *repository) BankDetailsTaken(ctx context.Context, partnerID, accountNumber, panTaxID string) (bool, error) {
	if accountNumber == "" && panTaxID == "" {
		return false, nil
	}
	q := r.db.WithContext(ctx).Model(&models.PartnerFinance{}).Where("partner_id <> ?", partnerID)
	switch {
	case accountNumber != "" && panTaxID != "":
		q = q.Where("account_number = ? OR pan_tax_id = ?", accountNumber, panTaxID)
	case accountNumber != "":
		q = q.Where("account_number = ?", accountNumber)
	default:
		q = q.Where("pan_tax_id = ?", panTaxID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) ListPartnerBookings(ctx context.Context, partnerID string) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("check_in_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RecognizedAmounts(ctx context.Context, partnerID string) ([]decimal.Decimal, error) {
	var rows []amountRow
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("original_amount AS amount").
		Where("partner_id = ? AND booking_status = ?", partnerID, enums.BookingStatusCompleted).
		Scan(&rows).Error
	return amounts(rows), err
}

func (r *repository) InsertTransaction(ctx context.Context, txn *models.PartnerTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindTransaction(ctx context.Context, partnerID, transactionID string) (*models.PartnerTransaction, error) {
	var txn models.PartnerTransaction
	err := r.db.WithContext(ctx).
		Where("partner_id = ? AND transaction_id = ?", partnerID, transactionID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, transactionID string, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.PartnerTransaction{}).
		Where("transaction_id = ?", transactionID).
		Update("status", status).Error
}

func (r *repository) ListTransactions(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error) {
	var rows []models.PartnerTransaction
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("transaction_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CommittedWithdrawals returns the withdrawal amounts of payouts that have not failed.
func (r *repository) CommittedWithdrawals(ctx context.Context, partnerID string) ([]decimal.Decimal, error) {
	var rows []amountRow
	err := r.db.WithContext(ctx).
		Model(&models.PartnerTransaction{}).
		Select("withdrawal_amount AS amount").
		Where("partner_id = ? AND status <> ? AND transaction_type = ?", partnerID, enums.PartnerTxnFailed, enums.PartnerTransactionTypePayout).
		Scan(&rows).Error
	return amounts(rows), err
}

// ListUnreversedFailures returns failed payouts whose withdrawal has not been
// credited back yet.
func (r *repository) ListUnreversedFailures(ctx context.Context, partnerID string) ([]models.PartnerTransaction, error) {
	var rows []models.PartnerTransaction
	err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status = ? AND withdrawal_amount > 0", partnerID, enums.PartnerTxnFailed).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ZeroWithdrawal(ctx context.Context, transactionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.PartnerTransaction{}).
		Where("transaction_id = ?", transactionID).
		Update("withdrawal_amount", decimal.Zero).Error
}

package rewards

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
)

const referralStatusCredited = "credited"

// Repository reads the refund and referral history behind the rewards page.
type Repository interface {
	ListRefunds(ctx context.Context, userID string, limit int) ([]models.PaymentTransaction, error)
	ReferralStats(ctx context.Context, userID string) (ReferralStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRefunds(ctx context.Context, userID string, limit int) ([]models.PaymentTransaction, error) {
	var rows []models.PaymentTransaction
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND is_refunded = ?", userID, true).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type referralRow struct {
	Amount decimal.Decimal
}

func (r *repository) ReferralStats(ctx context.Context, userID string) (ReferralStats, error) {
	var rows []referralRow
	err := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Select("reward_amount AS amount").
		Where("referrer_user_id = ? AND status = ?", userID, referralStatusCredited).
		Scan(&rows).Error
	if err != nil {
		return ReferralStats{}, err
	}
	stats := ReferralStats{Count: len(rows), Earnings: decimal.Zero}
	for _, row := range rows {
		stats.Earnings = stats.Earnings.Add(row.Amount)
	}
	return stats, nil
}

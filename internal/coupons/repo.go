package coupons

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

const incrementUsageSQL = `
INSERT INTO coupon_usages (coupon_id, user_id, usage_count, last_used_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (coupon_id, user_id) DO UPDATE
SET usage_count = coupon_usages.usage_count + 1,
    last_used_at = excluded.last_used_at
WHERE ? = 0 OR coupon_usages.usage_count < ?`

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) UsageCount(ctx context.Context, couponID uuid.UUID, userID string) (int, error) {
	var usage models.CouponUsage
	err := r.db.WithContext(ctx).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Limit(1).
		Find(&usage).Error
	if err != nil {
		return 0, err
	}
	return usage.UsageCount, nil
}

// IncrementUsage upserts the counter. It reports false when a positive limit
// has already been reached and nothing was written.
func (r *repository) IncrementUsage(ctx context.Context, couponID uuid.UUID, userID string, limit int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(incrementUsageSQL, couponID, userID, at, limit, limit)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Coupon, error) {
	var rows []models.Coupon
	err := r.db.WithContext(ctx).
		Where("LOWER(status) = ?", string(enums.CouponStatusActive)).
		Order("valid_to ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListUsages(ctx context.Context, userID string, couponIDs []uuid.UUID) ([]models.CouponUsage, error) {
	if len(couponIDs) == 0 {
		return nil, nil
	}
	var rows []models.CouponUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND coupon_id IN ?", userID, couponIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
)

// Repository exposes coupon definitions and per-user usage counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	UsageCount(ctx context.Context, couponID uuid.UUID, userID string) (int, error)
	IncrementUsage(ctx context.Context, couponID uuid.UUID, userID string, limit int, at time.Time) (bool, error)
	ListActive(ctx context.Context) ([]models.Coupon, error)
	ListUsages(ctx context.Context, userID string, couponIDs []uuid.UUID) ([]models.CouponUsage, error)
}

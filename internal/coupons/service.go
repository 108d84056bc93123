package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/money"
)

const (
	MessageMissingInput   = "Missing userId or couponCode"
	MessageInvalidCoupon  = "Invalid or expired coupon"
	MessageMinOrderNotMet = "Minimum order value not met"
	MessageUsageLimit     = "Coupon usage limit reached"
	MessageApplied        = "Coupon applied"
)

// Service validates coupons and records redemptions.
type Service interface {
	ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*Validation, error)
	RecordCouponUsage(ctx context.Context, tx *gorm.DB, userID, code string) error
	ListActiveWithUsage(ctx context.Context, userID string, now time.Time) ([]CouponWithUsage, error)
}

// Validation is the outcome of a side-effect free coupon check.
type Validation struct {
	Valid            bool            `json:"valid"`
	Code             string          `json:"couponCode,omitempty"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	DiscountedAmount decimal.Decimal `json:"discountedAmount"`
	Message          string          `json:"message"`
}

// CouponWithUsage pairs an active coupon with the caller's redemption count.
type CouponWithUsage struct {
	Coupon    models.Coupon
	Used      int
	Remaining *int
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*Validation, error) {
	userID = strings.TrimSpace(userID)
	code = strings.TrimSpace(code)
	if userID == "" || code == "" {
		return invalid(MessageMissingInput), nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid(MessageInvalidCoupon), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !redeemable(*coupon, s.now()) {
		return invalid(MessageInvalidCoupon), nil
	}
	if coupon.MinOrderValue.Valid && baseAmount.LessThan(coupon.MinOrderValue.Decimal) {
		return invalid(MessageMinOrderNotMet), nil
	}

	if limit := coupon.UsageLimit(); limit > 0 {
		used, err := s.repo.UsageCount(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon usage")
		}
		if used >= limit {
			return invalid(MessageUsageLimit), nil
		}
	}

	discount := Discount(*coupon, baseAmount)
	return &Validation{
		Valid:            true,
		Code:             coupon.Code,
		DiscountAmount:   discount,
		DiscountedAmount: money.NonNegative(baseAmount.Sub(discount)),
		Message:          MessageApplied,
	}, nil
}

// RecordCouponUsage bumps the user's redemption counter inside the booking
// transaction. A reached limit refuses the booking.
func (s *service) RecordCouponUsage(ctx context.Context, tx *gorm.DB, userID, code string) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	repo := s.repo.WithTx(tx)
	coupon, err := repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Refuse(pkgerrors.ReasonCouponInvalid, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	applied, err := repo.IncrementUsage(ctx, coupon.ID, userID, coupon.UsageLimit(), s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record coupon usage")
	}
	if !applied {
		return pkgerrors.Refuse(pkgerrors.ReasonUsageLimit, "coupon usage limit reached")
	}
	return nil
}

func (s *service) ListActiveWithUsage(ctx context.Context, userID string, now time.Time) ([]CouponWithUsage, error) {
	coupons, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}

	live := make([]models.Coupon, 0, len(coupons))
	ids := make([]uuid.UUID, 0, len(coupons))
	for _, c := range coupons {
		if !redeemable(c, now) {
			continue
		}
		live = append(live, c)
		ids = append(ids, c.ID)
	}

	usages, err := s.repo.ListUsages(ctx, userID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupon usage")
	}
	used := make(map[uuid.UUID]int, len(usages))
	for _, u := range usages {
		used[u.CouponID] = u.UsageCount
	}

	out := make([]CouponWithUsage, 0, len(live))
	for _, c := range live {
		entry := CouponWithUsage{Coupon: c, Used: used[c.ID]}
		if limit := c.UsageLimit(); limit > 0 {
			remaining := limit - entry.Used
			if remaining < 0 {
				remaining = 0
			}
			entry.Remaining = &remaining
		}
		out = append(out, entry)
	}
	return out, nil
}

// Discount computes the coupon discount for baseAmount. Percentage coupons are
// capped by max_discount when set.
func Discount(c models.Coupon, baseAmount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	if strings.EqualFold(string(c.DiscountType), string(enums.DiscountTypePercentage)) {
		discount = money.Percent(baseAmount, c.DiscountValue)
		if c.MaxDiscount.Valid {
			discount = money.Min(discount, c.MaxDiscount.Decimal)
		}
	} else {
		discount = money.Round(c.DiscountValue)
	}
	return money.NonNegative(discount)
}

func redeemable(c models.Coupon, now time.Time) bool {
	if !c.Status.IsActive() {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

func invalid(message string) *Validation {
	return &Validation{Message: message}
}

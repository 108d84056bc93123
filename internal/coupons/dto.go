package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

// CouponDTO is an eligible coupon with the caller's usage.
type CouponDTO struct {
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	DiscountType  enums.DiscountType  `json:"discount_type"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	MaxDiscount   decimal.NullDecimal `json:"max_discount"`
	MinOrderValue decimal.NullDecimal `json:"min_order_value"`
	ValidTo       time.Time           `json:"valid_to"`
	UsageLimit    *int                `json:"usage_limit_per_user,omitempty"`
	Used          int                 `json:"used"`
	Remaining     *int                `json:"remaining,omitempty"`
}

func ToCouponDTOs(rows []CouponWithUsage) []CouponDTO {
	out := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CouponDTO{
			Code:          row.Coupon.Code,
			Description:   row.Coupon.Description,
			DiscountType:  row.Coupon.DiscountType,
			DiscountValue: row.Coupon.DiscountValue,
			MaxDiscount:   row.Coupon.MaxDiscount,
			MinOrderValue: row.Coupon.MinOrderValue,
			ValidTo:       row.Coupon.ValidTo,
			UsageLimit:    row.Coupon.UsageLimitPerUser,
			Used:          row.Used,
			Remaining:     row.Remaining,
		})
	}
	return out
}

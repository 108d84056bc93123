package enums

import (
	"fmt"
	"strings"
)

// DiscountType selects how a coupon's discount_value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFlat
}

// ParseDiscountType converts raw input into a DiscountType, ignoring case.
func ParseDiscountType(value string) (DiscountType, error) {
	normalized := DiscountType(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// CouponStatus gates whether a coupon can be redeemed.
type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// IsActive compares case-insensitively since coupons are maintained by hand.
func (s CouponStatus) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(CouponStatusActive))
}

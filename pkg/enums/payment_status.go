package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the payment state stored on a booking.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// NormalizePaymentStatus maps free-form client input onto a PaymentStatus.
// Anything that does not look paid or failed is treated as pending.
func NormalizePaymentStatus(value string) PaymentStatus {
	lowered := strings.ToLower(strings.TrimSpace(value))
	switch {
	case lowered == "":
		return PaymentStatusPending
	case strings.Contains(lowered, "paid"), strings.Contains(lowered, "success"):
		return PaymentStatusPaid
	case strings.Contains(lowered, "failed"):
		return PaymentStatusFailed
	}
	return PaymentStatusPending
}

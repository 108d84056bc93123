package enums

import "fmt"

// PaymentAttemptStatus is the outcome recorded on a payment attempt row.
type PaymentAttemptStatus string

const (
	PaymentAttemptPaid   PaymentAttemptStatus = "Paid"
	PaymentAttemptFailed PaymentAttemptStatus = "Failed"
)

var validPaymentAttemptStatuses = []PaymentAttemptStatus{
	PaymentAttemptPaid,
	PaymentAttemptFailed,
}

// IsValid reports whether the value is a known PaymentAttemptStatus.
func (p PaymentAttemptStatus) IsValid() bool {
	for _, candidate := range validPaymentAttemptStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentAttemptStatus converts raw input into a PaymentAttemptStatus.
func ParsePaymentAttemptStatus(value string) (PaymentAttemptStatus, error) {
	for _, candidate := range validPaymentAttemptStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment attempt status %q", value)
}

// BookingPaymentStatus maps the attempt outcome onto the booking's payment status.
func (p PaymentAttemptStatus) BookingPaymentStatus() PaymentStatus {
	if p == PaymentAttemptPaid {
		return PaymentStatusPaid
	}
	return PaymentStatusFailed
}

// PaymentSource records who reported a payment attempt.
type PaymentSource string

const (
	PaymentSourceClient  PaymentSource = "client"
	PaymentSourceWebhook PaymentSource = "webhook"
)

package enums

import "strings"

// PaymentMethodType distinguishes prepaid bookings from pay-at-property ones.
type PaymentMethodType string

const (
	PaymentMethodOnline  PaymentMethodType = "Online"
	PaymentMethodOffline PaymentMethodType = "Offline"
)

// IsValid reports whether the value is a known PaymentMethodType.
func (p PaymentMethodType) IsValid() bool {
	return p == PaymentMethodOnline || p == PaymentMethodOffline
}

// ResolvePaymentMethodType treats "Pay at Hotel" and "Offline" as offline and
// everything else as online.
func ResolvePaymentMethodType(value string) PaymentMethodType {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "Pay at Hotel") || strings.EqualFold(trimmed, string(PaymentMethodOffline)) {
		return PaymentMethodOffline
	}
	return PaymentMethodOnline
}

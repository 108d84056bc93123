package enums

import (
	"fmt"
	"strings"
)

// PartnerTransactionStatus is the settlement state of a payout request.
type PartnerTransactionStatus string

const (
	PartnerTxnRequested PartnerTransactionStatus = "Requested"
	PartnerTxnSuccess   PartnerTransactionStatus = "Success"
	PartnerTxnFailed    PartnerTransactionStatus = "Failed"
)

var validPartnerTransactionStatuses = []PartnerTransactionStatus{
	PartnerTxnRequested,
	PartnerTxnSuccess,
	PartnerTxnFailed,
}

// IsValid reports whether the value is a known PartnerTransactionStatus.
func (s PartnerTransactionStatus) IsValid() bool {
	for _, candidate := range validPartnerTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePartnerTransactionStatus converts raw input, ignoring case.
func ParsePartnerTransactionStatus(value string) (PartnerTransactionStatus, error) {
	for _, candidate := range validPartnerTransactionStatuses {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid partner transaction status %q", value)
}

// PartnerTransactionTypePayout is the only transaction type written today.
const PartnerTransactionTypePayout = "PAYOUT"

// PayoutType is the settlement cadence a partner chose.
type PayoutType string

const (
	PayoutTypeDaily     PayoutType = "Daily"
	PayoutTypeWeekly    PayoutType = "Weekly"
	PayoutTypeFortnight PayoutType = "Fornight"
	PayoutTypeMonthly   PayoutType = "Monthly"
	PayoutTypeQuarterly PayoutType = "Quarterly"
)

var validPayoutTypes = []PayoutType{
	PayoutTypeDaily,
	PayoutTypeWeekly,
	PayoutTypeFortnight,
	PayoutTypeMonthly,
	PayoutTypeQuarterly,
}

// IsValid reports whether the value is a known PayoutType.
func (p PayoutType) IsValid() bool {
	for _, candidate := range validPayoutTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutType converts raw input, ignoring case.
func ParsePayoutType(value string) (PayoutType, error) {
	for _, candidate := range validPayoutTypes {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout type %q", value)
}

package enums

import "fmt"

// WalletStatus gates whether a wallet may be debited.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
)

// IsValid reports whether the value is a known WalletStatus.
func (s WalletStatus) IsValid() bool {
	return s == WalletStatusActive || s == WalletStatusFrozen
}

// WalletTxnDirection is the sign of a wallet ledger entry.
type WalletTxnDirection string

const (
	WalletTxnDebit  WalletTxnDirection = "debit"
	WalletTxnCredit WalletTxnDirection = "credit"
)

// WalletTxnType classifies why a wallet entry was written.
type WalletTxnType string

const (
	WalletTxnBookingPayment WalletTxnType = "booking_payment"
	WalletTxnSignupBonus    WalletTxnType = "signup_bonus"
	WalletTxnReferralReward WalletTxnType = "referral_reward"
	WalletTxnRefund         WalletTxnType = "refund"
)

var validWalletTxnTypes = []WalletTxnType{
	WalletTxnBookingPayment,
	WalletTxnSignupBonus,
	WalletTxnReferralReward,
	WalletTxnRefund,
}

// IsValid reports whether the value is a known WalletTxnType.
func (t WalletTxnType) IsValid() bool {
	for _, candidate := range validWalletTxnTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWalletTxnType converts raw input into a WalletTxnType.
func ParseWalletTxnType(value string) (WalletTxnType, error) {
	for _, candidate := range validWalletTxnTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}

// WalletTxnStatus is the settlement state of a wallet entry.
type WalletTxnStatus string

const (
	WalletTxnSuccess WalletTxnStatus = "success"
	WalletTxnFailed  WalletTxnStatus = "failed"
)

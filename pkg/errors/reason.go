package errors

const reasonKey = "reason"

// Reason is a machine-readable refusal cause carried in error details.
type Reason string

const (
	ReasonInvalidRange     Reason = "INVALID_RANGE"
	ReasonActionNotAllowed Reason = "ACTION_NOT_ALLOWED"
	ReasonStaleBooking     Reason = "STALE_BOOKING"
	ReasonBelowMinimum     Reason = "BELOW_MINIMUM"
	ReasonExceedsAvailable Reason = "EXCEEDS_AVAILABLE"
	ReasonUsageLimit       Reason = "USAGE_LIMIT_REACHED"
	ReasonCouponInvalid    Reason = "COUPON_INVALID"
	ReasonWalletInactive   Reason = "WALLET_INACTIVE"
	ReasonSignatureInvalid Reason = "SIGNATURE_INVALID"
)

// Refuse builds a business rule violation tagged with reason.
func Refuse(reason Reason, message string) *Error {
	return New(CodeBusinessRule, message).WithDetails(map[string]any{reasonKey: string(reason)})
}

// Invalid builds a validation error tagged with reason.
func Invalid(reason Reason, message string) *Error {
	return New(CodeValidation, message).WithDetails(map[string]any{reasonKey: string(reason)})
}

// ReasonOf extracts the refusal reason from err, if any.
func ReasonOf(err error) Reason {
	typed := As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	switch v := details[reasonKey].(type) {
	case string:
		return Reason(v)
	case Reason:
		return v
	}
	return ""
}

// StateConflict builds a state conflict tagged with reason.
func StateConflict(reason Reason, message string) *Error {
	return New(CodeStateConflict, message).WithDetails(map[string]any{reasonKey: string(reason)})
}

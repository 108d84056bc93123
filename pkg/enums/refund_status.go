package enums

// RefundStatus tracks refunds on a booking. The empty value means none was requested.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = ""
	RefundStatusInitiated RefundStatus = "Refund Initiated"
	RefundStatusCompleted RefundStatus = "Refunded"
)

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	switch r {
	case RefundStatusNone, RefundStatusInitiated, RefundStatusCompleted:
		return true
	}
	return false
}

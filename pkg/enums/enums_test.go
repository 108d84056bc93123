package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatusIgnoresCase(t *testing.T) {
	got, err := ParseBookingStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, BookingStatusConfirmed, got)

	_, err = ParseBookingStatus("CHECKED_IN")
	assert.Error(t, err)
}

func TestResolvePaymentMethodType(t *testing.T) {
	cases := map[string]PaymentMethodType{
		"Pay at Hotel": PaymentMethodOffline,
		"pay at hotel": PaymentMethodOffline,
		"offline":      PaymentMethodOffline,
		"Online":       PaymentMethodOnline,
		"UPI":          PaymentMethodOnline,
		"":             PaymentMethodOnline,
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolvePaymentMethodType(in), in)
	}
}

func TestNormalizePaymentStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"":                PaymentStatusPending,
		"Paid":            PaymentStatusPaid,
		"payment success": PaymentStatusPaid,
		"FAILED":          PaymentStatusFailed,
		"processing":      PaymentStatusPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePaymentStatus(in), in)
	}
}

func TestPaymentAttemptMapsToBookingStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, PaymentAttemptPaid.BookingPaymentStatus())
	assert.Equal(t, PaymentStatusFailed, PaymentAttemptFailed.BookingPaymentStatus())
}

func TestDiscountAndCouponStatus(t *testing.T) {
	got, err := ParseDiscountType("Percentage")
	require.NoError(t, err)
	assert.Equal(t, DiscountTypePercentage, got)

	_, err = ParseDiscountType("bogo")
	assert.Error(t, err)

	assert.True(t, CouponStatus("ACTIVE").IsActive())
	assert.False(t, CouponStatusInactive.IsActive())
}

func TestPartnerTransactionAndPayoutTypes(t *testing.T) {
	status, err := ParsePartnerTransactionStatus("success")
	require.NoError(t, err)
	assert.Equal(t, PartnerTxnSuccess, status)

	payout, err := ParsePayoutType("fornight")
	require.NoError(t, err)
	assert.Equal(t, PayoutTypeFortnight, payout)

	_, err = ParsePayoutType("yearly")
	assert.Error(t, err)
}

func TestOutboxEnums(t *testing.T) {
	evt, err := ParseOutboxEventType("payout_settled")
	require.NoError(t, err)
	assert.Equal(t, EventPayoutSettled, evt)

	_, err = ParseOutboxAggregateType("order")
	assert.Error(t, err)
	assert.True(t, OutboxDLQReasonMaxAttempts.IsValid())
}

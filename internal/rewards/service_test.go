package rewards

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/internal/coupons"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/dbtest"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.New(t)
	wallets, err := wallet.NewService(wallet.NewRepository(conn), db.FromGorm(conn), config.WalletConfig{
		SignupBonus:            decimal.NewFromInt(200),
		MaxBookingSharePercent: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	couponSvc, err := coupons.NewService(coupons.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), wallets, couponSvc)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return impl, conn
}

func TestGetSummaryCreatesWalletLazily(t *testing.T) {
	svc, conn := newTestService(t)

	summary, err := svc.GetSummary(context.Background(), "user-new")
	require.NoError(t, err)
	assert.NotEmpty(t, summary.WalletID)
	assert.True(t, summary.Balance.IsZero())
	assert.Empty(t, summary.Transactions)
	assert.Empty(t, summary.Refunds)
	assert.Equal(t, 0, summary.Referrals.Count)

	var n int64
	require.NoError(t, conn.Model(&models.Wallet{}).Where("user_id = ?", "user-new").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetSummaryCollectsHistory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.wallets.SeedSignupBonus(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, conn.Create(&models.PaymentTransaction{
		ID:            uuid.New(),
		BookingID:     "BKG123456",
		UserID:        "user-1",
		PartnerID:     "partner-1",
		HotelID:       "hotel-1",
		PaymentStatus: enums.PaymentAttemptPaid,
		Amount:        decimal.NewFromInt(1000),
		AttemptNo:     1,
		Source:        enums.PaymentSourceClient,
		IsRefunded:    true,
		RefundAmount:  decimal.NewFromInt(1000),
	}).Error)
	require.NoError(t, conn.Create(&models.PaymentTransaction{
		ID:            uuid.New(),
		BookingID:     "BKG123457",
		UserID:        "user-1",
		PartnerID:     "partner-1",
		HotelID:       "hotel-1",
		PaymentStatus: enums.PaymentAttemptPaid,
		Amount:        decimal.NewFromInt(500),
		AttemptNo:     1,
		Source:        enums.PaymentSourceClient,
		RefundAmount:  decimal.Zero,
	}).Error)
	for _, status := range []string{"credited", "credited", "pending"} {
		require.NoError(t, conn.Create(&models.Referral{
			ID:             uuid.New(),
			ReferrerUserID: "user-1",
			ReferredUserID: uuid.NewString(),
			RewardAmount:   decimal.NewFromInt(100),
			Status:         status,
		}).Error)
	}
	require.NoError(t, conn.Create(&models.Coupon{
		ID:            uuid.New(),
		Code:          "WELCOME",
		DiscountType:  "flat",
		DiscountValue: decimal.NewFromInt(100),
		ValidFrom:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:        "active",
	}).Error)

	summary, err := svc.GetSummary(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "200", summary.Balance.String())
	require.Len(t, summary.Transactions, 1)
	require.Len(t, summary.Refunds, 1)
	assert.Equal(t, "BKG123456", summary.Refunds[0].BookingID)
	assert.Equal(t, 2, summary.Referrals.Count)
	assert.Equal(t, "200", summary.Referrals.Earnings.String())
	require.Len(t, summary.Coupons, 1)
	assert.Equal(t, "WELCOME", summary.Coupons[0].Code)
	assert.Equal(t, ReferralCode("user-1"), summary.ReferralCode)
}

func TestReferralCodeIsStable(t *testing.T) {
	code := ReferralCode("user-1")
	assert.Equal(t, code, ReferralCode("user-1"))
	assert.NotEqual(t, code, ReferralCode("user-2"))
	assert.Regexp(t, regexp.MustCompile(`^HB-[0-9A-Z]{1,5}[0-9]{3}$`), code)
}

func TestGetSummaryRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetSummary(context.Background(), " ")
	require.Error(t, err)
}

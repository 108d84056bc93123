package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/db/dbtest"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.New(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	return impl, conn
}

func seedCoupon(t *testing.T, conn *gorm.DB, mutate func(*models.Coupon)) models.Coupon {
	t.Helper()
	c := models.Coupon{
		ID:            uuid.New(),
		Code:          "SAVE20",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		MaxDiscount:   decimal.NewNullDecimal(decimal.NewFromInt(150)),
		ValidFrom:     fixedNow.Add(-24 * time.Hour),
		ValidTo:       fixedNow.Add(24 * time.Hour),
		Status:        enums.CouponStatusActive,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(t, conn.Create(&c).Error)
	return c
}

func intPtr(v int) *int { return &v }

func TestValidateCouponCapsPercentageDiscount(t *testing.T) {
	svc, conn := newTestService(t)
	seedCoupon(t, conn, nil)

	res, err := svc.ValidateCoupon(context.Background(), "user-1", "save20", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.True(t, res.Valid, res.Message)
	assert.Equal(t, "150", res.DiscountAmount.String())
	assert.Equal(t, "850", res.DiscountedAmount.String())
}

func TestValidateCouponFlatNeverGoesNegative(t *testing.T) {
	svc, conn := newTestService(t)
	seedCoupon(t, conn, func(c *models.Coupon) {
		c.Code = "FLAT500"
		c.DiscountType = enums.DiscountTypeFlat
		c.DiscountValue = decimal.NewFromInt(500)
		c.MaxDiscount = decimal.NullDecimal{}
	})

	res, err := svc.ValidateCoupon(context.Background(), "user-1", "FLAT500", decimal.NewFromInt(300))
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, "500", res.DiscountAmount.String())
	assert.True(t, res.DiscountedAmount.IsZero())
}

func TestValidateCouponRejections(t *testing.T) {
	cases := []struct {
		name    string
		code    string
		user    string
		base    int64
		mutate  func(*models.Coupon)
		message string
	}{
		{name: "missing code", code: "", user: "user-1", base: 1000, message: MessageMissingInput},
		{name: "unknown", code: "NOPE", user: "user-1", base: 1000, message: MessageInvalidCoupon},
		{name: "inactive", code: "SAVE20", user: "user-1", base: 1000, mutate: func(c *models.Coupon) {
			c.Status = enums.CouponStatusInactive
		}, message: MessageInvalidCoupon},
		{name: "expired", code: "SAVE20", user: "user-1", base: 1000, mutate: func(c *models.Coupon) {
			c.ValidTo = fixedNow.Add(-time.Hour)
		}, message: MessageInvalidCoupon},
		{name: "not started", code: "SAVE20", user: "user-1", base: 1000, mutate: func(c *models.Coupon) {
			c.ValidFrom = fixedNow.Add(time.Hour)
		}, message: MessageInvalidCoupon},
		{name: "below minimum", code: "SAVE20", user: "user-1", base: 400, mutate: func(c *models.Coupon) {
			c.MinOrderValue = decimal.NewNullDecimal(decimal.NewFromInt(500))
		}, message: MessageMinOrderNotMet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, conn := newTestService(t)
			seedCoupon(t, conn, tc.mutate)

			res, err := svc.ValidateCoupon(context.Background(), tc.user, tc.code, decimal.NewFromInt(tc.base))
			require.NoError(t, err)
			assert.False(t, res.Valid)
			assert.Equal(t, tc.message, res.Message)
		})
	}
}

func TestRecordCouponUsageEnforcesLimit(t *testing.T) {
	svc, conn := newTestService(t)
	coupon := seedCoupon(t, conn, func(c *models.Coupon) { c.UsageLimitPerUser = intPtr(1) })
	runner := db.FromGorm(conn)
	ctx := context.Background()

	require.NoError(t, runner.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.RecordCouponUsage(ctx, tx, "user-1", "SAVE20")
	}))

	res, err := svc.ValidateCoupon(ctx, "user-1", "SAVE20", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageUsageLimit, res.Message)

	err = runner.WithTx(ctx, func(tx *gorm.DB) error {
		return svc.RecordCouponUsage(ctx, tx, "user-1", "SAVE20")
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ReasonUsageLimit, pkgerrors.ReasonOf(err))

	used, err := NewRepository(conn).UsageCount(ctx, coupon.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, used)

	other, err := svc.ValidateCoupon(ctx, "user-2", "SAVE20", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, other.Valid)
}

func TestRecordCouponUsageUnlimitedKeepsCounting(t *testing.T) {
	svc, conn := newTestService(t)
	coupon := seedCoupon(t, conn, nil)
	runner := db.FromGorm(conn)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, runner.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.RecordCouponUsage(ctx, tx, "user-1", "SAVE20")
		}))
	}

	used, err := NewRepository(conn).UsageCount(ctx, coupon.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, used)
}

func TestListActiveWithUsage(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	limited := seedCoupon(t, conn, func(c *models.Coupon) { c.UsageLimitPerUser = intPtr(2) })
	seedCoupon(t, conn, func(c *models.Coupon) {
		c.Code = "OLD10"
		c.ValidTo = fixedNow.Add(-time.Hour)
	})
	require.NoError(t, db.FromGorm(conn).WithTx(ctx, func(tx *gorm.DB) error {
		return svc.RecordCouponUsage(ctx, tx, "user-1", "SAVE20")
	}))

	rows, err := svc.ListActiveWithUsage(ctx, "user-1", fixedNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, limited.ID, rows[0].Coupon.ID)
	assert.Equal(t, 1, rows[0].Used)
	require.NotNil(t, rows[0].Remaining)
	assert.Equal(t, 1, *rows[0].Remaining)
}

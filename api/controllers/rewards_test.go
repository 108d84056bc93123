package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/staybook-backend/internal/coupons"
	"github.com/angelmondragon/staybook-backend/internal/rewards"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
)

type stubRewardsService struct {
	summary  func(ctx context.Context, userID string) (*rewards.Summary, error)
	validate func(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error)
}

func (s stubRewardsService) GetSummary(ctx context.Context, userID string) (*rewards.Summary, error) {
	return s.summary(ctx, userID)
}

func (s stubRewardsService) ValidateCoupon(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error) {
	return s.validate(ctx, userID, code, baseAmount)
}

type stubWalletService struct {
	seed func(ctx context.Context, userID string) (*wallet.SignupResult, error)
}

func (s stubWalletService) ApplyWalletDebit(ctx context.Context, tx *gorm.DB, input wallet.DebitInput) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s stubWalletService) Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) (*models.WalletTransaction, error) {
	return nil, nil
}

func (s stubWalletService) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	return nil, nil
}

func (s stubWalletService) SeedSignupBonus(ctx context.Context, userID string) (*wallet.SignupResult, error) {
	return s.seed(ctx, userID)
}

func (s stubWalletService) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func TestCouponValidatePreview(t *testing.T) {
	svc := stubRewardsService{validate: func(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error) {
		assert.Equal(t, "U1", userID)
		assert.Equal(t, "WELCOME10", code)
		assert.True(t, baseAmount.Equal(decimal.NewFromInt(2000)))
		return &coupons.Validation{
			Valid:            true,
			Code:             code,
			DiscountAmount:   decimal.NewFromInt(200),
			DiscountedAmount: decimal.NewFromInt(1800),
		}, nil
	}}
	body := `{"user_id":"U1","code":" WELCOME10 ","amount":"2000"}`
	resp := serve(CouponValidate(svc, nil), newRequest(http.MethodPost, "/api/v1/coupons/validate", body, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var out coupons.Validation
	decodeData(t, resp, &out)
	assert.True(t, out.Valid)
	assert.True(t, out.DiscountedAmount.Equal(decimal.NewFromInt(1800)))
}

func TestCouponValidateMissingInputStillAnswers(t *testing.T) {
	svc := stubRewardsService{validate: func(ctx context.Context, userID, code string, baseAmount decimal.Decimal) (*coupons.Validation, error) {
		return &coupons.Validation{Valid: false, Message: coupons.MessageMissingInput}, nil
	}}
	resp := serve(CouponValidate(svc, nil), newRequest(http.MethodPost, "/api/v1/coupons/validate", `{"amount":100}`, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var out coupons.Validation
	decodeData(t, resp, &out)
	assert.False(t, out.Valid)
	assert.Equal(t, coupons.MessageMissingInput, out.Message)
}

func TestCouponValidateRejectsNegativeAmount(t *testing.T) {
	resp := serve(CouponValidate(stubRewardsService{}, nil), newRequest(http.MethodPost, "/api/v1/coupons/validate", `{"user_id":"U1","code":"X","amount":-5}`, nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRewardsSummary(t *testing.T) {
	svc := stubRewardsService{summary: func(ctx context.Context, userID string) (*rewards.Summary, error) {
		return &rewards.Summary{UserID: userID, Balance: decimal.NewFromInt(200), ReferralCode: "HB-1A2B3C"}, nil
	}}
	req := newRequest(http.MethodGet, "/api/v1/users/U1/rewards", "", map[string]string{"userId": "U1"})
	resp := serve(RewardsSummary(svc, nil), req)

	require.Equal(t, http.StatusOK, resp.Code)
	var out rewards.Summary
	decodeData(t, resp, &out)
	assert.Equal(t, "HB-1A2B3C", out.ReferralCode)
}

func TestWalletSignupBonusCreatedThenExisting(t *testing.T) {
	created := true
	walletID := uuid.New()
	svc := stubWalletService{seed: func(ctx context.Context, userID string) (*wallet.SignupResult, error) {
		w := models.Wallet{ID: walletID, UserID: userID, Balance: decimal.NewFromInt(200), Status: enums.WalletStatusActive}
		return &wallet.SignupResult{Wallet: w, Created: created}, nil
	}}
	req := newRequest(http.MethodPost, "/api/v1/users/U1/wallet/signup-bonus", "", map[string]string{"userId": "U1"})
	resp := serve(WalletSignupBonus(svc, nil), req)
	require.Equal(t, http.StatusCreated, resp.Code)

	var out signupBonusResponse
	decodeData(t, resp, &out)
	assert.Equal(t, walletID.String(), out.Wallet.WalletID)
	assert.True(t, out.Wallet.Balance.Equal(decimal.NewFromInt(200)))

	created = false
	req = newRequest(http.MethodPost, "/api/v1/users/U1/wallet/signup-bonus", "", map[string]string{"userId": "U1"})
	resp = serve(WalletSignupBonus(svc, nil), req)
	require.Equal(t, http.StatusOK, resp.Code)
}

package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	"github.com/angelmondragon/staybook-backend/internal/rewards"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

func RewardsSummary(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetSummary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type validateCouponRequest struct {
	UserID string          `json:"user_id" validate:"max=64"`
	Code   string          `json:"code" validate:"max=64"`
	Amount decimal.Decimal `json:"amount" validate:"nonnegative"`
}

// CouponValidate previews a coupon against an order amount without
// recording usage. An unusable coupon still answers 200 with valid=false.
func CouponValidate(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ValidateCoupon(r.Context(), payload.UserID, validators.SanitizeString(payload.Code, 64), payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type signupBonusResponse struct {
	Wallet  wallet.WalletDTO `json:"wallet"`
	Created bool             `json:"created"`
}

// WalletSignupBonus creates the user's wallet seeded with the signup bonus.
// Repeat calls return the existing wallet untouched.
func WalletSignupBonus(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.PathParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SeedSignupBonus(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body := signupBonusResponse{Wallet: wallet.ToWalletDTO(result.Wallet), Created: result.Created}
		if result.Created {
			responses.WriteCreated(w, body)
			return
		}
		responses.WriteSuccess(w, body)
	}
}

package controllers

import (
	"net/http"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

type settlePayoutRequest struct {
	Status string `json:"status" validate:"required,oneof=Success Failed"`
}

// AdminSettlePayout closes a Requested payout as Success or Failed.
func AdminSettlePayout(svc finance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partnerID, err := validators.PathParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactionID, err := validators.PathParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload settlePayoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.SettlePayout(r.Context(), partnerID, transactionID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, finance.ToTransactionDTO(*row))
	}
}

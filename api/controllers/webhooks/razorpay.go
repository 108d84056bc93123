package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/staybook-backend/api/responses"
	"github.com/angelmondragon/staybook-backend/api/validators"
	razorpaywebhook "github.com/angelmondragon/staybook-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/angelmondragon/staybook-backend/pkg/errors"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/razorpay"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
	maxWebhookBody  = 1 << 20
)

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *razorpaywebhook.Event) error
}

type razorpayWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type webhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) error
}

// RazorpayWebhook verifies and applies gateway payment events. Nothing is
// decoded before the signature checks out.
func RazorpayWebhook(svc RazorpayWebhookService, verifier webhookVerifier, guard razorpayWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "razorpay webhook unavailable"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get(signatureHeader))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "razorpay signature missing"))
			return
		}

		payload, err := validators.ReadBody(r, maxWebhookBody)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := verifier.VerifyWebhookSignature(payload, signature); err != nil {
			if errors.Is(err, razorpay.ErrSignatureMismatch) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid razorpay signature"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify razorpay signature"))
			return
		}

		var event razorpaywebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode razorpay event"))
			return
		}

		eventID := razorpaywebhook.EventID(r.Header.Get(eventIDHeader), &event)
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"webhook_event": event.Event,
				"event_id":      eventID,
			})
		}

		if eventID != "" {
			seen, err := guard.CheckAndMark(ctx, eventID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				if logg != nil {
					logg.Info(ctx, "razorpay event replay ignored")
				}
				responses.WriteSuccess(w, map[string]any{"status": "duplicate"})
				return
			}
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if eventID != "" {
				if delErr := guard.Delete(ctx, eventID); delErr != nil && logg != nil {
					logg.Error(ctx, "release webhook idempotency mark", delErr)
				}
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, "razorpay event processed")
		}
		responses.WriteSuccess(w, map[string]any{"status": "processed"})
	}
}

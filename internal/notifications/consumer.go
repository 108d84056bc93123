package notifications

import (
	"context"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/outbox/payloads"
)

const payoutNotificationConsumer = "partner-payout-notifications"

// financeFlags is the slice of the finance store the consumer writes to.
type financeFlags interface {
	UpdateFinance(ctx context.Context, partnerID string, updates map[string]any) error
}

type processedGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID string) (bool, error)
	Delete(ctx context.Context, consumer string, eventID string) error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Consumer watches domain events and re-raises the partner finance
// notification whenever a payout reaches Success or Failed. The partner
// clears it through the notification-viewed endpoint.
type Consumer struct {
	finance      financeFlags
	subscription receiver
	guard        processedGuard
	logg         *logger.Logger
}

func NewConsumer(finance financeFlags, subscription receiver, guard processedGuard, logg *logger.Logger) (*Consumer, error) {
	if finance == nil {
		return nil, fmt.Errorf("finance repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{finance: finance, subscription: subscription, guard: guard, logg: logg}, nil
}

// Run receives until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process reports whether the message should be acked. Malformed messages
// are acked so they do not redeliver forever.
func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) bool {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventPayoutSettled) {
		return true
	}

	envelope, err := outbox.DecodeEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID := envelope.EventID

	var payload payloads.PayoutSettledEvent
	if err := envelope.DecodeData(&payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payout payload", err)
		return true
	}
	if strings.TrimSpace(payload.PartnerID) == "" {
		c.logg.Warn(logCtx, "payout event without partner id")
		return true
	}
	logCtx = c.logg.WithPartnerID(logCtx, payload.PartnerID)
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"transaction_id": payload.TransactionID,
		"status":         payload.Status,
	})

	if payload.Status != enums.PartnerTxnSuccess && payload.Status != enums.PartnerTxnFailed {
		return true
	}

	already, err := c.guard.CheckAndMarkProcessed(ctx, payoutNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := c.finance.UpdateFinance(ctx, payload.PartnerID, map[string]any{"notification_viewed": false}); err != nil {
		c.logg.Error(logCtx, "failed to raise partner notification", err)
		_ = c.guard.Delete(ctx, payoutNotificationConsumer, eventID)
		return false
	}
	c.logg.Info(logCtx, "partner notified of settled payout")
	return true
}

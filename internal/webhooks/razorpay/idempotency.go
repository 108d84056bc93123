package razorpaywebhook

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/staybook-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/staybook-backend/pkg/redis"
)

// ConsumerName scopes the de-duplication keys of gateway webhooks.
const ConsumerName = "razorpay-webhook"

// IdempotencyGuard drops webhook redeliveries that were already processed.
type IdempotencyGuard struct {
	manager *idempotency.Manager
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	manager, err := idempotency.NewManager(store, ttl)
	if err != nil {
		return nil, err
	}
	return &IdempotencyGuard{manager: manager}, nil
}

// CheckAndMark reports whether the event was seen before and marks it otherwise.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return g.manager.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
}

// Delete clears the mark so the gateway's retry is processed.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	return g.manager.Delete(ctx, ConsumerName, eventID)
}

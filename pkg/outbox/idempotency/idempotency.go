// Package idempotency records which domain events a consumer has already
// applied so at-least-once delivery never double-applies money movements.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/staybook-backend/pkg/redis"
)

const processedScope = "evt:processed:"

var (
	ErrConsumerRequired = errors.New("consumer name is required")
	ErrEventIDRequired  = errors.New("event id is required")
)

// Manager marks (consumer, event) pairs with SETNX. A zero ttl keeps marks
// forever.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed reports true when eventID was already marked for
// consumer. Otherwise it marks it and reports false.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	k, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	fresh, err := m.store.SetNX(ctx, k, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

// Delete drops the mark, used when applying the event failed after marking.
func (m *Manager) Delete(ctx context.Context, consumer, eventID string) error {
	k, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, k)
}

func (m *Manager) key(consumer, eventID string) (string, error) {
	consumer, eventID = strings.TrimSpace(consumer), strings.TrimSpace(eventID)
	if consumer == "" {
		return "", ErrConsumerRequired
	}
	if eventID == "" {
		return "", ErrEventIDRequired
	}
	return m.store.IdempotencyKey(processedScope+consumer, eventID), nil
}

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/staybook-backend/pkg/enums"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/outbox"
	"github.com/angelmondragon/staybook-backend/pkg/outbox/payloads"
)

func TestProcessRaisesNotificationOnSettledPayout(t *testing.T) {
	finance := &fakeFinance{}
	guard := newFakeGuard()
	c := newTestConsumer(t, finance, guard)

	msg := settledMessage(t, uuid.NewString(), "P100", enums.PartnerTxnSuccess)
	require.True(t, c.process(context.Background(), msg))

	require.Len(t, finance.calls, 1)
	assert.Equal(t, "P100", finance.calls[0].partnerID)
	assert.Equal(t, map[string]any{"notification_viewed": false}, finance.calls[0].updates)
}

func TestProcessSkipsRedelivery(t *testing.T) {
	finance := &fakeFinance{}
	c := newTestConsumer(t, finance, newFakeGuard())

	msg := settledMessage(t, "evt-1", "P100", enums.PartnerTxnFailed)
	require.True(t, c.process(context.Background(), msg))
	require.True(t, c.process(context.Background(), msg))

	assert.Len(t, finance.calls, 1)
}

func TestProcessIgnoresOtherEventsAndStatuses(t *testing.T) {
	finance := &fakeFinance{}
	c := newTestConsumer(t, finance, newFakeGuard())

	other := settledMessage(t, "evt-2", "P100", enums.PartnerTxnSuccess)
	other.Attributes["event_type"] = string(enums.EventBookingCreated)
	assert.True(t, c.process(context.Background(), other))

	requested := settledMessage(t, "evt-3", "P100", enums.PartnerTxnRequested)
	assert.True(t, c.process(context.Background(), requested))

	garbage := &pubsub.Message{
		Data:       []byte("not json"),
		Attributes: map[string]string{"event_type": string(enums.EventPayoutSettled)},
	}
	assert.True(t, c.process(context.Background(), garbage))

	assert.Empty(t, finance.calls)
}

func TestProcessNacksAndForgetsOnWriteFailure(t *testing.T) {
	finance := &fakeFinance{err: errors.New("db down")}
	guard := newFakeGuard()
	c := newTestConsumer(t, finance, guard)

	msg := settledMessage(t, "evt-4", "P100", enums.PartnerTxnSuccess)
	assert.False(t, c.process(context.Background(), msg))
	assert.NotContains(t, guard.seen, "evt-4")
}

func TestProcessNacksWhenGuardUnavailable(t *testing.T) {
	finance := &fakeFinance{}
	guard := newFakeGuard()
	guard.err = errors.New("redis down")
	c := newTestConsumer(t, finance, guard)

	assert.False(t, c.process(context.Background(), settledMessage(t, "evt-5", "P100", enums.PartnerTxnSuccess)))
	assert.Empty(t, finance.calls)
}

func TestNewConsumerRequiresDependencies(t *testing.T) {
	_, err := NewConsumer(nil, fakeReceiver{}, newFakeGuard(), testLogger())
	assert.Error(t, err)
	_, err = NewConsumer(&fakeFinance{}, nil, newFakeGuard(), testLogger())
	assert.Error(t, err)
}

func newTestConsumer(t *testing.T, finance *fakeFinance, guard *fakeGuard) *Consumer {
	t.Helper()
	c, err := NewConsumer(finance, fakeReceiver{}, guard, testLogger())
	require.NoError(t, err)
	return c
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
}

func settledMessage(t *testing.T, eventID, partnerID string, status enums.PartnerTransactionStatus) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payloads.PayoutSettledEvent{
		TransactionID:    "TXN-1",
		PartnerID:        partnerID,
		Status:           status,
		WithdrawalAmount: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         "msg-" + eventID,
		Data:       body,
		Attributes: map[string]string{"event_type": string(enums.EventPayoutSettled)},
	}
}

type financeCall struct {
	partnerID string
	updates   map[string]any
}

type fakeFinance struct {
	calls []financeCall
	err   error
}

func (f *fakeFinance) UpdateFinance(_ context.Context, partnerID string, updates map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, financeCall{partnerID: partnerID, updates: updates})
	return nil
}

type fakeGuard struct {
	seen map[string]bool
	err  error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{seen: map[string]bool{}}
}

func (g *fakeGuard) CheckAndMarkProcessed(_ context.Context, _ string, eventID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen[eventID] {
		return true, nil
	}
	g.seen[eventID] = true
	return false, nil
}

func (g *fakeGuard) Delete(_ context.Context, _ string, eventID string) error {
	delete(g.seen, eventID)
	return nil
}

type fakeReceiver struct{}

func (fakeReceiver) Receive(context.Context, func(context.Context, *pubsub.Message)) error {
	return nil
}

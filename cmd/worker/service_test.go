package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard})
}

func TestRunFailsFastOnDependency(t *testing.T) {
	called := false
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Dependencies: []dependency{
			{name: "redis", ping: func(context.Context) error { return errors.New("refused") }},
		},
		Consumers: map[string]runner{"payouts": runnerFunc(func(context.Context) error {
			called = true
			return nil
		})},
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
	assert.False(t, called)
}

func TestRunReturnsConsumerFailure(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Consumers: map[string]runner{"payouts": runnerFunc(func(context.Context) error {
			return errors.New("subscription deleted")
		})},
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payouts: subscription deleted")
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Consumers: map[string]runner{"payouts": runnerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Run(ctx), context.DeadlineExceeded)
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: testLogger()})
	assert.Error(t, err)
}

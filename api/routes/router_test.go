package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db/models"
	"github.com/angelmondragon/staybook-backend/pkg/enums"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	mu      sync.Mutex
	data    map[string]string
	allowed bool
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, allowed: true}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryRedis) Ping(context.Context) error {
	return nil
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, _ string, limit int64, _ time.Duration) (bool, int64, error) {
	if m.allowed {
		return true, 1, nil
	}
	return false, limit + 1, nil
}

type stubBookings struct {
	bookings.Service
	created int
}

func (s *stubBookings) CreateBooking(ctx context.Context, req bookings.Request) (*models.Booking, error) {
	s.created++
	return &models.Booking{
		ID:            fmt.Sprintf("BKG%06d", s.created),
		CheckInDate:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		BookingStatus: enums.BookingStatusPending,
	}, nil
}

type stubFinance struct {
	finance.Service
	requested int
}

func (s *stubFinance) RequestPayout(ctx context.Context, partnerID string, amount decimal.Decimal, comment string) (*finance.PayoutResult, error) {
	s.requested++
	return &finance.PayoutResult{TransactionID: "TX_1", Status: enums.PartnerTxnRequested, WithdrawalAmount: amount}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		HTTP: config.HTTPConfig{
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitWindow:   time.Minute,
			PaymentsPerIP:     30,
			CouponChecksPerIP: 60,
			IdempotencyTTL:    time.Hour,
		},
	}
}

func newTestRouter(store *memoryRedis, bookingSvc bookings.Service, financeSvc finance.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(testConfig(), logg, stubPinger{}, store, bookingSvc, nil, financeSvc, nil, nil, nil, nil, nil)
}

func do(handler http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(newMemoryRedis(), &stubBookings{}, &stubFinance{})

	live := do(router, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "dev", live.Header().Get("X-StayBook-Env"))
	assert.NotEmpty(t, live.Header().Get("X-Request-Id"))

	ready := do(router, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, ready.Code)
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(newMemoryRedis(), &stubBookings{}, &stubFinance{})
	resp := do(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(newMemoryRedis(), &stubBookings{}, &stubFinance{})
	resp := do(router, http.MethodGet, "/api/v1/orders", "", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookingCreateReplaysIdempotentResponse(t *testing.T) {
	svc := &stubBookings{}
	router := newTestRouter(newMemoryRedis(), svc, &stubFinance{})
	body := `{"Partner_ID":"P1","User_ID":"U1","Check_In_Date":"2026-11-01"}`
	headers := map[string]string{"Idempotency-Key": "create-1", "Content-Type": "application/json"}

	first := do(router, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(router, http.MethodPost, "/api/v1/bookings", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, svc.created)

	reused := do(router, http.MethodPost, "/api/v1/bookings", `{"Partner_ID":"P2"}`, headers)
	assert.Equal(t, http.StatusConflict, reused.Code)
	assert.Equal(t, 1, svc.created)
}

func TestBookingCreateRequiresIdempotencyKey(t *testing.T) {
	svc := &stubBookings{}
	router := newTestRouter(newMemoryRedis(), svc, &stubFinance{})
	resp := do(router, http.MethodPost, "/api/v1/bookings", `{"Partner_ID":"P1"}`, nil)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, svc.created)
}

func TestPayoutRouteIsIdempotent(t *testing.T) {
	svc := &stubFinance{}
	router := newTestRouter(newMemoryRedis(), &stubBookings{}, svc)
	headers := map[string]string{"Idempotency-Key": "payout-1"}

	for i := 0; i < 2; i++ {
		resp := do(router, http.MethodPost, "/api/v1/partners/P1/payouts", `{"amount":"6000"}`, headers)
		require.Equal(t, http.StatusCreated, resp.Code)
	}
	assert.Equal(t, 1, svc.requested)
}

func TestCouponValidateRateLimited(t *testing.T) {
	store := newMemoryRedis()
	store.allowed = false
	router := newTestRouter(store, &stubBookings{}, &stubFinance{})

	resp := do(router, http.MethodPost, "/api/v1/coupons/validate", `{"user_id":"U1","code":"X","amount":10}`, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
}

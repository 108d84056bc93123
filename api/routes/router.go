package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/staybook-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/staybook-backend/api/controllers/webhooks"
	"github.com/angelmondragon/staybook-backend/api/middleware"
	"github.com/angelmondragon/staybook-backend/internal/bookings"
	"github.com/angelmondragon/staybook-backend/internal/finance"
	"github.com/angelmondragon/staybook-backend/internal/payments"
	"github.com/angelmondragon/staybook-backend/internal/rewards"
	"github.com/angelmondragon/staybook-backend/internal/wallet"
	razorpaywebhook "github.com/angelmondragon/staybook-backend/internal/webhooks/razorpay"
	"github.com/angelmondragon/staybook-backend/pkg/config"
	"github.com/angelmondragon/staybook-backend/pkg/db"
	"github.com/angelmondragon/staybook-backend/pkg/logger"
	"github.com/angelmondragon/staybook-backend/pkg/redis"
)

// webhookVerifier checks the gateway's webhook HMAC.
type webhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) error
}

// redisStore is the redis surface the edge middleware needs.
type redisStore interface {
	redis.IdempotencyStore
	redis.Pinger
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	bookingService bookings.Service,
	paymentService payments.Service,
	financeService finance.Service,
	rewardsService rewards.Service,
	walletService wallet.Service,
	webhookService *razorpaywebhook.Service,
	gatewayVerifier webhookVerifier,
	webhookGuard *razorpaywebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	idempotent := middleware.Idempotency(redisClient, cfg.HTTP.IdempotencyTTL, logg)
	paymentsLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("payments", cfg.HTTP.RateLimitWindow, cfg.HTTP.PaymentsPerIP),
		redisClient,
		logg,
	)
	couponLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("coupons", cfg.HTTP.RateLimitWindow, cfg.HTTP.CouponChecksPerIP),
		redisClient,
		logg,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(idempotent).Post("/bookings", controllers.BookingCreate(bookingService, logg))
		r.Get("/bookings/{bookingId}", controllers.BookingGet(bookingService, logg))
		r.Get("/bookings/{bookingId}/payments", controllers.BookingPaymentAttempts(paymentService, logg))
		r.Put("/bookings/{bookingId}/dates", controllers.BookingUpdateDates(bookingService, logg))
		r.Post("/bookings/{bookingId}/cancel", controllers.BookingCancel(bookingService, logg))
		r.Put("/bookings/{bookingId}/payment-status", controllers.BookingUpdatePaymentStatus(bookingService, logg))

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/bookings", controllers.UserBookingHistory(bookingService, logg))
			r.Get("/rewards", controllers.RewardsSummary(rewardsService, logg))
			r.Post("/wallet/signup-bonus", controllers.WalletSignupBonus(walletService, logg))
		})

		r.With(couponLimit).Post("/coupons/validate", controllers.CouponValidate(rewardsService, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Use(paymentsLimit)
			r.Post("/orders", controllers.PaymentCreateOrder(paymentService, logg))
			r.With(idempotent).Post("/verify", controllers.PaymentVerify(paymentService, logg))
		})

		r.Post("/webhooks/razorpay", webhookcontrollers.RazorpayWebhook(webhookService, gatewayVerifier, webhookGuard, logg))

		r.Route("/partners/{partnerId}", func(r chi.Router) {
			r.Get("/bookings", controllers.PartnerBookings(bookingService, logg))
			r.Post("/bookings/{bookingId}/status", controllers.PartnerBookingStatus(bookingService, logg))
			r.Get("/finance", controllers.PartnerFinanceSummary(financeService, logg))
			r.Put("/finance/bank-details", controllers.PartnerBankDetails(financeService, logg))
			r.Post("/finance/notification-viewed", controllers.PartnerNotificationViewed(financeService, logg))
			r.With(idempotent).Post("/payouts", controllers.PartnerRequestPayout(financeService, logg))
			r.Get("/payouts", controllers.PartnerPayouts(financeService, logg))
		})

		r.Post("/admin/partners/{partnerId}/payouts/{transactionId}/settle", controllers.AdminSettlePayout(financeService, logg))
	})

	return r
}

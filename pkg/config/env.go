package config

const (
	EnvPrefix = "STAYBOOK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "STAYBOOK_APP_ENV"
	EnvPort     = "STAYBOOK_APP_PORT"
	EnvLogLevel = "STAYBOOK_LOG_LEVEL"

	EnvDBDSN  = "STAYBOOK_DB_DSN"
	EnvDBHost = "STAYBOOK_DB_HOST"
	EnvDBUser = "STAYBOOK_DB_USER"
	EnvDBName = "STAYBOOK_DB_NAME"

	EnvRedisURL = "STAYBOOK_REDIS_URL"

	EnvPubSubDomainSubscription = "STAYBOOK_PUBSUB_DOMAIN_SUBSCRIPTION"

	EnvRazorpayKeyID         = "STAYBOOK_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret     = "STAYBOOK_RAZORPAY_KEY_SECRET"
	EnvRazorpayWebhookSecret = "STAYBOOK_RAZORPAY_WEBHOOK_SECRET"

	EnvFinanceMinWithdrawal      = "STAYBOOK_FINANCE_MIN_WITHDRAWAL"
	EnvFinanceCommissionFallback = "STAYBOOK_FINANCE_COMMISSION_FALLBACK_PERCENT"
	EnvFinanceFallbackOnSummary  = "STAYBOOK_FINANCE_APPLY_FALLBACK_ON_SUMMARY"

	EnvWalletSignupBonus          = "STAYBOOK_WALLET_SIGNUP_BONUS"
	EnvBookingAllowCancelComplete = "STAYBOOK_BOOKING_ALLOW_CANCEL_COMPLETED"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

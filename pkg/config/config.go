package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Razorpay     RazorpayConfig
	Finance      FinanceConfig
	Wallet       WalletConfig
	Booking      BookingConfig
	Cron         CronConfig
	HTTP         HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Finance.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STAYBOOK_APP_ENV" required:"true"`
	Port         string `envconfig:"STAYBOOK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STAYBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STAYBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STAYBOOK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STAYBOOK_DB_DSN"`
	Driver string `envconfig:"STAYBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STAYBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"STAYBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STAYBOOK_DB_USER"`
	LegacyPassword string `envconfig:"STAYBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"STAYBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"STAYBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STAYBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STAYBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STAYBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STAYBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STAYBOOK_REDIS_URL"`
	Address      string        `envconfig:"STAYBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"STAYBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STAYBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STAYBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STAYBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STAYBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STAYBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STAYBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STAYBOOK_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL  time.Duration `envconfig:"STAYBOOK_EVENTING_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
	ConsumerIdempotencyTTL time.Duration `envconfig:"STAYBOOK_EVENTING_CONSUMER_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STAYBOOK_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"STAYBOOK_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"STAYBOOK_PUBSUB_DOMAIN_TOPIC" default:"staybook-domain-events"`
	DomainSubscription string `envconfig:"STAYBOOK_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"STAYBOOK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"STAYBOOK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"STAYBOOK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"STAYBOOK_OUTBOX_RETENTION" default:"720h"`
}

type RazorpayConfig struct {
	KeyID            string        `envconfig:"STAYBOOK_RAZORPAY_KEY_ID"`
	KeySecret        string        `envconfig:"STAYBOOK_RAZORPAY_KEY_SECRET"`
	WebhookSecret    string        `envconfig:"STAYBOOK_RAZORPAY_WEBHOOK_SECRET"`
	Currency         string        `envconfig:"STAYBOOK_RAZORPAY_CURRENCY" default:"INR"`
	Timeout          time.Duration `envconfig:"STAYBOOK_RAZORPAY_TIMEOUT" default:"10s"`
	BreakerThreshold int64         `envconfig:"STAYBOOK_RAZORPAY_BREAKER_THRESHOLD" default:"5"`
}

// FinanceConfig carries the payout policy knobs.
type FinanceConfig struct {
	MinWithdrawal             decimal.Decimal `envconfig:"STAYBOOK_FINANCE_MIN_WITHDRAWAL" default:"5000"`
	CommissionFallbackPercent decimal.Decimal `envconfig:"STAYBOOK_FINANCE_COMMISSION_FALLBACK_PERCENT" default:"15"`
	ApplyFallbackOnSummary    bool            `envconfig:"STAYBOOK_FINANCE_APPLY_FALLBACK_ON_SUMMARY" default:"true"`
}

func (f FinanceConfig) validate() error {
	if f.MinWithdrawal.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvFinanceMinWithdrawal)
	}
	if f.CommissionFallbackPercent.IsNegative() || f.CommissionFallbackPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", EnvFinanceCommissionFallback)
	}
	return nil
}

type WalletConfig struct {
	SignupBonus            decimal.Decimal `envconfig:"STAYBOOK_WALLET_SIGNUP_BONUS" default:"200"`
	MaxBookingSharePercent decimal.Decimal `envconfig:"STAYBOOK_WALLET_MAX_BOOKING_SHARE_PERCENT" default:"50"`
}

type BookingConfig struct {
	AllowCancelCompleted bool `envconfig:"STAYBOOK_BOOKING_ALLOW_CANCEL_COMPLETED" default:"false"`
}

// HTTPConfig carries the edge policy of the API process.
type HTTPConfig struct {
	CORSOrigins       []string      `envconfig:"STAYBOOK_CORS_ORIGINS" default:"http://localhost:3000"`
	RateLimitWindow   time.Duration `envconfig:"STAYBOOK_RATE_LIMIT_WINDOW" default:"1m"`
	PaymentsPerIP     int           `envconfig:"STAYBOOK_RATE_LIMIT_PAYMENTS" default:"30"`
	CouponChecksPerIP int           `envconfig:"STAYBOOK_RATE_LIMIT_COUPONS" default:"60"`
	IdempotencyTTL    time.Duration `envconfig:"STAYBOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"STAYBOOK_CRON_INTERVAL" default:"1h"`
	CompletionBatchSize int           `envconfig:"STAYBOOK_CRON_COMPLETION_BATCH_SIZE" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

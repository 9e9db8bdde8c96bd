package app

import (
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/db"
	"github.com/yungbote/coursehub-backend/internal/jobs/worker"
	"github.com/yungbote/coursehub-backend/internal/observability"
	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/payments"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
	"github.com/yungbote/coursehub-backend/internal/temporalx"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration

	Postgres db.PostgresConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PayPal         payments.PayPalConfig
	Paystack       payments.PaystackConfig
	DefaultGateway string
	TaxRatePercent float64
	Currency       string

	OrderPendingTTL     time.Duration
	OrderExpirySchedule string
	IdempotencyTTL      time.Duration

	SendGrid     sendgrid.Config
	AppName      string
	AppBaseURL   string
	ContactEmail string

	ObjectStorage           gcp.ObjectStorageConfig
	VisionModerationEnabled bool

	Worker   worker.Config
	Temporal temporalx.Config
	Otel     observability.OtelConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	storage, err := gcp.ObjectStorageConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	secret := envutil.String("JWT_SECRET_KEY", "")
	if secret == "" {
		log.Warn("JWT_SECRET_KEY not set; using an insecure development secret")
		secret = "coursehub-dev-secret"
	}
	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS"),

		JWTSecretKey:   secret,
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL:  envutil.Duration("RESET_TOKEN_TTL", time.Hour),
		VerifyTokenTTL: envutil.Duration("VERIFY_TOKEN_TTL", 72*time.Hour),

		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "coursehub"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpen:  envutil.Int("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdle:  envutil.Int("POSTGRES_MAX_IDLE_CONNS", 10),
		},
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),

		PayPal:         payments.PayPalConfigFromEnv(),
		Paystack:       payments.PaystackConfigFromEnv(),
		DefaultGateway: envutil.String("PAYMENT_DEFAULT_GATEWAY", payments.GatewayPayPal),
		TaxRatePercent: envutil.Float("TAX_RATE_PERCENT", 5),
		Currency:       envutil.String("PAYMENT_CURRENCY", "USD"),

		OrderPendingTTL:     envutil.Duration("ORDER_PENDING_TTL", 24*time.Hour),
		OrderExpirySchedule: envutil.String("ORDER_EXPIRY_SCHEDULE", "@every 15m"),
		IdempotencyTTL:      envutil.Duration("IDEMPOTENCY_TTL", 24*time.Hour),

		SendGrid:     sendgrid.ConfigFromEnv(),
		AppName:      envutil.String("APP_NAME", "CourseHub"),
		AppBaseURL:   envutil.String("APP_BASE_URL", "http://localhost:3000"),
		ContactEmail: envutil.String("CONTACT_EMAIL", ""),

		ObjectStorage:           storage,
		VisionModerationEnabled: envutil.Bool("VISION_MODERATION_ENABLED", false),

		Worker:   worker.ConfigFromEnv(),
		Temporal: temporalx.LoadConfig(),
		Otel:     observability.OtelConfigFromEnv(),
	}
	log.Info("Config loaded",
		"http_addr", cfg.HTTPAddr,
		"redis", cfg.RedisAddr != "",
		"temporal", cfg.Temporal.Enabled(),
		"gateway", cfg.DefaultGateway,
		"tax_rate", cfg.TaxRatePercent,
	)
	return cfg, nil
}

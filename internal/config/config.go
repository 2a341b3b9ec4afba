package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultDatabaseURL      = "snapbook.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultDraftTTL         = "72h"
	defaultRequestTimeout   = "15s"
	defaultGatewayTimeout   = "30s"
	defaultAttemptTTL       = "30m"
	defaultLockTTL          = "30s"
	defaultMoMoEndpoint     = "https://test-payment.momo.vn/v2/gateway/api/create"
	defaultMoMoRequestType  = "captureWallet"
	defaultReturnURL        = "http://localhost:8080/api/v1/payments/momo/return"
	defaultNotifyURL        = "http://localhost:8080/api/v1/payments/momo/ipn"
	defaultUploadDir        = "./uploads"
	defaultStaticURLBase    = "/static/uploads"
	defaultUploadFolder     = "snapbook"
	defaultSignInRate       = "10-1m"
	defaultCallbackRate     = "60-1m"
	defaultLogLevel         = "info"
	defaultLogMaxSizeMB     = "50"
	defaultLogMaxBackups    = "5"
	defaultLogMaxAgeDays    = "30"
	defaultKafkaPaymentsTop = "booking-payments"
	defaultKafkaOffersTopic = "booking-offers"
	defaultCORSOrigins      = "http://localhost:3000"
)

type Config struct {
	AppEnv string
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Auth   AuthConfig
	Wizard WizardConfig
	MoMo   MoMoConfig
	Upload UploadConfig
	Limits RateLimitConfig
	Jobs   JobsConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type DBConfig struct {
	URL string
}

// RedisConfig holds the Redis connection URL. Outside prod an empty URL
// starts an embedded in-memory server.
type RedisConfig struct {
	URL string
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	PaymentsTopic string
	OffersTopic   string
}

type AuthConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type WizardConfig struct {
	DraftTTL time.Duration
}

type MoMoConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RequestType string
	ReturnURL   string
	NotifyURL   string
	Timeout     time.Duration
	AttemptTTL  time.Duration
	LockTTL     time.Duration
}

type UploadConfig struct {
	Provider      string
	BaseDir       string
	StaticURLBase string
	Folder        string
	CloudinaryURL string
}

type RateLimitConfig struct {
	SignIn   string
	Callback string
}

type JobsConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	var err error

	cfg.Server.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.Server.CORSOrigins = splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins))
	if cfg.Server.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return nil, err
	}

	cfg.DB.URL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.Redis.URL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.Kafka.Enabled = parseBoolEnv("KAFKA_ENABLED", "false")
	cfg.Kafka.Brokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Kafka.PaymentsTopic = strings.TrimSpace(getEnv("KAFKA_PAYMENTS_TOPIC", defaultKafkaPaymentsTop))
	cfg.Kafka.OffersTopic = strings.TrimSpace(getEnv("KAFKA_OFFERS_TOPIC", defaultKafkaOffersTopic))

	cfg.Auth.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	if cfg.Auth.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}

	if cfg.Wizard.DraftTTL, err = parseDurationEnv("DRAFT_TTL", defaultDraftTTL); err != nil {
		return nil, err
	}

	cfg.MoMo.Endpoint = strings.TrimSpace(getEnv("MOMO_ENDPOINT", defaultMoMoEndpoint))
	cfg.MoMo.PartnerCode = strings.TrimSpace(os.Getenv("MOMO_PARTNER_CODE"))
	cfg.MoMo.AccessKey = strings.TrimSpace(os.Getenv("MOMO_ACCESS_KEY"))
	cfg.MoMo.SecretKey = strings.TrimSpace(os.Getenv("MOMO_SECRET_KEY"))
	cfg.MoMo.RequestType = strings.TrimSpace(getEnv("MOMO_REQUEST_TYPE", defaultMoMoRequestType))
	cfg.MoMo.ReturnURL = strings.TrimSpace(getEnv("MOMO_RETURN_URL", defaultReturnURL))
	cfg.MoMo.NotifyURL = strings.TrimSpace(getEnv("MOMO_NOTIFY_URL", defaultNotifyURL))
	if cfg.MoMo.Timeout, err = parseDurationEnv("MOMO_TIMEOUT", defaultGatewayTimeout); err != nil {
		return nil, err
	}
	if cfg.MoMo.AttemptTTL, err = parseDurationEnv("PAYMENT_ATTEMPT_TTL", defaultAttemptTTL); err != nil {
		return nil, err
	}
	if cfg.MoMo.LockTTL, err = parseDurationEnv("PAYMENT_LOCK_TTL", defaultLockTTL); err != nil {
		return nil, err
	}

	cfg.Upload.CloudinaryURL = strings.TrimSpace(os.Getenv("CLOUDINARY_URL"))
	cfg.Upload.Provider = strings.ToLower(strings.TrimSpace(os.Getenv("UPLOAD_PROVIDER")))
	if cfg.Upload.Provider == "" {
		cfg.Upload.Provider = "local"
		if cfg.Upload.CloudinaryURL != "" {
			cfg.Upload.Provider = "cloudinary"
		}
	}
	cfg.Upload.BaseDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))
	cfg.Upload.StaticURLBase = strings.TrimSpace(getEnv("UPLOAD_STATIC_URL", defaultStaticURLBase))
	cfg.Upload.Folder = strings.TrimSpace(getEnv("UPLOAD_FOLDER", defaultUploadFolder))

	cfg.Limits.SignIn = strings.TrimSpace(getEnv("RATE_LIMIT_SIGN_IN", defaultSignInRate))
	cfg.Limits.Callback = strings.TrimSpace(getEnv("RATE_LIMIT_CALLBACK", defaultCallbackRate))

	cfg.Jobs.Enabled = parseBoolEnv("JOBS_ENABLED", "true")

	cfg.Log.Level = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.Log.File = strings.TrimSpace(os.Getenv("LOG_FILE"))
	if cfg.Log.MaxSizeMB, err = parseIntEnv("LOG_MAX_SIZE_MB", defaultLogMaxSizeMB); err != nil {
		return nil, err
	}
	if cfg.Log.MaxBackups, err = parseIntEnv("LOG_MAX_BACKUPS", defaultLogMaxBackups); err != nil {
		return nil, err
	}
	if cfg.Log.MaxAgeDays, err = parseIntEnv("LOG_MAX_AGE_DAYS", defaultLogMaxAgeDays); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Auth.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Wizard.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be > 0")
	}
	if cfg.MoMo.Timeout <= 0 {
		return fmt.Errorf("MOMO_TIMEOUT must be > 0")
	}
	if cfg.MoMo.AttemptTTL <= 0 {
		return fmt.Errorf("PAYMENT_ATTEMPT_TTL must be > 0")
	}
	if cfg.MoMo.LockTTL <= 0 {
		return fmt.Errorf("PAYMENT_LOCK_TTL must be > 0")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when KAFKA_ENABLED=true")
	}
	switch cfg.Upload.Provider {
	case "local":
	case "cloudinary":
		if cfg.Upload.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL must be set when UPLOAD_PROVIDER=cloudinary")
		}
	default:
		return fmt.Errorf("UPLOAD_PROVIDER must be one of: local, cloudinary")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.MoMo.PartnerCode == "" || cfg.MoMo.AccessKey == "" || cfg.MoMo.SecretKey == "" {
			return fmt.Errorf("in prod/release MOMO_PARTNER_CODE, MOMO_ACCESS_KEY and MOMO_SECRET_KEY must be set")
		}
		if cfg.Redis.URL == "" {
			return fmt.Errorf("in prod/release REDIS_URL must be set")
		}
	}

	return nil
}

// IsProd reports whether the service runs with production settings.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

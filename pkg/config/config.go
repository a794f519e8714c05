package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "STREETLINK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Frequently referenced variable names, kept as constants so tests and
// operational tooling stay in sync with the struct tags below.
const (
	EnvAppEnv            = "STREETLINK_APP_ENV"
	EnvPort              = "STREETLINK_APP_PORT"
	EnvDBDSN             = "STREETLINK_DB_DSN"
	EnvRedisURL          = "STREETLINK_REDIS_URL"
	EnvFirebaseProjectID = "STREETLINK_FIREBASE_PROJECT_ID"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Firebase      FirebaseConfig
	Delivery      DeliveryConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STREETLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"STREETLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STREETLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STREETLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STREETLINK_DB_DSN" required:"true"`
	Driver string `envconfig:"STREETLINK_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"STREETLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STREETLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STREETLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STREETLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STREETLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STREETLINK_REDIS_ADDR"`
	Password     string        `envconfig:"STREETLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STREETLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STREETLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STREETLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STREETLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STREETLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STREETLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FirebaseConfig wires the external identity provider. CredentialsFile is
// optional; without it the Admin SDK falls back to application default
// credentials scoped to ProjectID.
type FirebaseConfig struct {
	ProjectID       string `envconfig:"STREETLINK_FIREBASE_PROJECT_ID" required:"true"`
	CredentialsFile string `envconfig:"STREETLINK_FIREBASE_CREDENTIALS_FILE"`
}

// DeliveryConfig holds the pricing knobs for delivery assignments.
type DeliveryConfig struct {
	BaseFee      string  `envconfig:"STREETLINK_DELIVERY_BASE_FEE" default:"50.00"`
	PerKmFee     string  `envconfig:"STREETLINK_DELIVERY_PER_KM_FEE" default:"8.00"`
	AvgSpeedKmph float64 `envconfig:"STREETLINK_DELIVERY_AVG_SPEED_KMPH" default:"25"`
}

// CronConfig drives the maintenance worker cadence.
type CronConfig struct {
	Interval time.Duration `envconfig:"STREETLINK_CRON_INTERVAL" default:"1h"`
	OrderTTL time.Duration `envconfig:"STREETLINK_CRON_ORDER_TTL" default:"48h"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STREETLINK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"STREETLINK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow  time.Duration `envconfig:"STREETLINK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"STREETLINK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STREETLINK_AUTO_MIGRATE" default:"false"`
	// DevAuthFallback accepts unverified bearer tokens the way the legacy
	// stack did during local development. Hard-disabled outside dev.
	DevAuthFallback bool `envconfig:"STREETLINK_DEV_AUTH_FALLBACK" default:"false"`
}

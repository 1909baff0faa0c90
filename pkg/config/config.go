package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when expanding bare field names.
const EnvPrefix = "FOOTBALLNET"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv     = "FOOTBALLNET_APP_ENV"
	EnvPort       = "FOOTBALLNET_APP_PORT"
	EnvDBDSN      = "FOOTBALLNET_DB_DSN"
	EnvDBHost     = "FOOTBALLNET_DB_HOST"
	EnvDBUser     = "FOOTBALLNET_DB_USER"
	EnvDBName     = "FOOTBALLNET_DB_NAME"
	EnvRedisURL   = "FOOTBALLNET_REDIS_URL"
	EnvJWTSecret  = "FOOTBALLNET_JWT_SECRET"
	EnvJWTIssuer  = "FOOTBALLNET_JWT_ISSUER"
	EnvJWTExpMins = "FOOTBALLNET_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOOTBALLNET_APP_ENV" required:"true"`
	Port         string `envconfig:"FOOTBALLNET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOOTBALLNET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOOTBALLNET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FOOTBALLNET_DB_DSN"`
	Driver string `envconfig:"FOOTBALLNET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FOOTBALLNET_DB_HOST"`
	LegacyPort     int    `envconfig:"FOOTBALLNET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOOTBALLNET_DB_USER"`
	LegacyPassword string `envconfig:"FOOTBALLNET_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOOTBALLNET_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOOTBALLNET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOOTBALLNET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOOTBALLNET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOOTBALLNET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOOTBALLNET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOOTBALLNET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOOTBALLNET_REDIS_ADDR"`
	Password     string        `envconfig:"FOOTBALLNET_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOOTBALLNET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOOTBALLNET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOOTBALLNET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOOTBALLNET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOOTBALLNET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOOTBALLNET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens minted by the external identity provider.
// The API only verifies them; it never issues production credentials itself.
type JWTConfig struct {
	Secret            string `envconfig:"FOOTBALLNET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FOOTBALLNET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FOOTBALLNET_JWT_EXPIRATION_MINUTES" required:"true"`
}

type RateLimitConfig struct {
	WriteWindow    time.Duration `envconfig:"FOOTBALLNET_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit   int           `envconfig:"FOOTBALLNET_RATE_LIMIT_WRITE_IP_LIMIT" default:"60"`
	WriteUserLimit int           `envconfig:"FOOTBALLNET_RATE_LIMIT_WRITE_USER_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"FOOTBALLNET_AUTO_MIGRATE" default:"false"`
	NotificationBus bool `envconfig:"FOOTBALLNET_FEATURE_NOTIFICATION_BUS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOOTBALLNET_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"FOOTBALLNET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"FOOTBALLNET_PUBSUB_NOTIFICATION_TOPIC" default:"fn-notification-events"`
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

// Package config loads all runtime settings from MCEVERSE_-prefixed
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Provisioning  ProvisioningConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"MCEVERSE_APP_ENV" required:"true"`
	Port         string `envconfig:"MCEVERSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MCEVERSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MCEVERSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MCEVERSE_DB_DSN"`
	Driver string `envconfig:"MCEVERSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MCEVERSE_DB_HOST"`
	LegacyPort     int    `envconfig:"MCEVERSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MCEVERSE_DB_USER"`
	LegacyPassword string `envconfig:"MCEVERSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MCEVERSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MCEVERSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MCEVERSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MCEVERSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MCEVERSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MCEVERSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MCEVERSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MCEVERSE_REDIS_ADDR"`
	Password     string        `envconfig:"MCEVERSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MCEVERSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MCEVERSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MCEVERSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MCEVERSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MCEVERSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MCEVERSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MCEVERSE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MCEVERSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MCEVERSE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MCEVERSE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"MCEVERSE_PASSWORD_MIN_LENGTH" default:"6"`
	ArgonMemoryKB    int `envconfig:"MCEVERSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MCEVERSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MCEVERSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MCEVERSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MCEVERSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MCEVERSE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// ProvisioningConfig tunes the direct-insert signup path: how long to wait for a
// fresh session to become active and how profile insert retries back off.
type ProvisioningConfig struct {
	RequireEmailVerification bool          `envconfig:"MCEVERSE_REQUIRE_EMAIL_VERIFICATION" default:"false"`
	SessionWaitAttempts      int           `envconfig:"MCEVERSE_PROVISION_SESSION_WAIT_ATTEMPTS" default:"5"`
	SessionWaitBackoff       time.Duration `envconfig:"MCEVERSE_PROVISION_SESSION_WAIT_BACKOFF" default:"200ms"`
	InsertRetryBackoff       time.Duration `envconfig:"MCEVERSE_PROVISION_INSERT_RETRY_BACKOFF" default:"500ms"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MCEVERSE_AUTO_MIGRATE" default:"false"`
}

// ensureDSN backfills DSN from the discrete host/user/name variables so
// deployments that predate MCEVERSE_DB_DSN keep working.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.LegacyUser),
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacyPassword != "" {
		u.User = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	if db.LegacySSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{db.LegacySSLMode}}.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Tokens        TokenConfig
	Payments      PaymentsConfig
	Mail          MailConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Local DSN-free mode: a file-backed sqlite database instead of Postgres.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "file:catalogbase.db"
		}
		return &cfg, nil
	}

	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATALOGBASE_APP_ENV" required:"true"`
	Port         string `envconfig:"CATALOGBASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CATALOGBASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CATALOGBASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CATALOGBASE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CATALOGBASE_DB_DSN"`
	Driver string `envconfig:"CATALOGBASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CATALOGBASE_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOGBASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOGBASE_DB_USER"`
	LegacyPassword string `envconfig:"CATALOGBASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOGBASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOGBASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOGBASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOGBASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOGBASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOGBASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: when neither URL nor address is set, the rate
// limiter gate and cron lock are disabled rather than failing bootstrap.
type RedisConfig struct {
	URL          string        `envconfig:"CATALOGBASE_REDIS_URL"`
	Address      string        `envconfig:"CATALOGBASE_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOGBASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOGBASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOGBASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOGBASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOGBASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOGBASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOGBASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a Redis backend was supplied at all.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"CATALOGBASE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CATALOGBASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CATALOGBASE_JWT_EXPIRATION_MINUTES" default:"43200"`
}

// SessionTTL returns the session token lifetime (defaults to 30 days).
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CATALOGBASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CATALOGBASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CATALOGBASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CATALOGBASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CATALOGBASE_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig throttles the credential endpoints. FailOpen keeps
// login available when the counter store is unreachable.
type AuthRateLimitConfig struct {
	Window      time.Duration `envconfig:"CATALOGBASE_AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	LoginLimit  int           `envconfig:"CATALOGBASE_AUTH_RATE_LIMIT_LOGIN_LIMIT" default:"5"`
	SignupLimit int           `envconfig:"CATALOGBASE_AUTH_RATE_LIMIT_SIGNUP_LIMIT" default:"5"`
	FailOpen    bool          `envconfig:"CATALOGBASE_AUTH_RATE_LIMIT_FAIL_OPEN" default:"true"`
}

type TokenConfig struct {
	VerificationTTL time.Duration `envconfig:"CATALOGBASE_TOKEN_VERIFICATION_TTL" default:"1h"`
	ResetTTL        time.Duration `envconfig:"CATALOGBASE_TOKEN_RESET_TTL" default:"1h"`
}

type PaymentsConfig struct {
	WebhookSecret string `envconfig:"CATALOGBASE_PAYMENTS_WEBHOOK_SECRET"`
}

type MailConfig struct {
	DefaultFrom string `envconfig:"CATALOGBASE_MAIL_FROM" default:"no-reply@catalogbase.io"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CATALOGBASE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CATALOGBASE_AUTO_MIGRATE" default:"false"`
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "CANTEEN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Payment       PaymentConfig
	OAuth         OAuthConfig
	Notify        NotifyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The sqlite flag must win before DSN validation, or a dev boot
	// without postgres settings fails here.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CANTEEN_APP_ENV" required:"true"`
	Port         string `envconfig:"CANTEEN_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"CANTEEN_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"CANTEEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CANTEEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CANTEEN_DB_DSN"`
	Driver string `envconfig:"CANTEEN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CANTEEN_DB_HOST"`
	Port     int    `envconfig:"CANTEEN_DB_PORT" default:"5432"`
	User     string `envconfig:"CANTEEN_DB_USER"`
	Password string `envconfig:"CANTEEN_DB_PASSWORD"`
	Name     string `envconfig:"CANTEEN_DB_NAME"`
	SSLMode  string `envconfig:"CANTEEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CANTEEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CANTEEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CANTEEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CANTEEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CANTEEN_REDIS_URL"`
	Address      string        `envconfig:"CANTEEN_REDIS_ADDR"`
	Password     string        `envconfig:"CANTEEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"CANTEEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CANTEEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CANTEEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CANTEEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CANTEEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CANTEEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CANTEEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CANTEEN_JWT_ISSUER" default:"canteen-api"`
	ExpirationMinutes int    `envconfig:"CANTEEN_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SessionTTL returns how long an access session stays resolvable in the
// session store after it was minted.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthConfig struct {
	SignInLinkTTL time.Duration `envconfig:"CANTEEN_AUTH_SIGNIN_LINK_TTL" default:"15m"`
	EmailSlotTTL  time.Duration `envconfig:"CANTEEN_AUTH_EMAIL_SLOT_TTL" default:"24h"`
}

type AuthRateLimitConfig struct {
	LinkWindow     time.Duration `envconfig:"CANTEEN_AUTH_RATE_LIMIT_LINK_WINDOW" default:"1m"`
	LinkEmailLimit int           `envconfig:"CANTEEN_AUTH_RATE_LIMIT_LINK_EMAIL_LIMIT" default:"3"`
	LinkIPLimit    int           `envconfig:"CANTEEN_AUTH_RATE_LIMIT_LINK_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CANTEEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CANTEEN_AUTO_MIGRATE" default:"false"`
	SeedMenu    bool `envconfig:"CANTEEN_SEED_MENU" default:"true"`
}

type PaymentConfig struct {
	KeyID        string `envconfig:"CANTEEN_PAYMENT_KEY_ID"`
	KeySecret    string `envconfig:"CANTEEN_PAYMENT_KEY_SECRET"`
	Currency     string `envconfig:"CANTEEN_PAYMENT_CURRENCY" default:"INR"`
	MerchantName string `envconfig:"CANTEEN_PAYMENT_MERCHANT_NAME" default:"Poornima Canteen"`
}

type OAuthConfig struct {
	ClientID     string `envconfig:"CANTEEN_OAUTH_CLIENT_ID"`
	ClientSecret string `envconfig:"CANTEEN_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"CANTEEN_OAUTH_REDIRECT_URL"`
	AuthURL      string `envconfig:"CANTEEN_OAUTH_AUTH_URL" default:"https://accounts.google.com/o/oauth2/auth"`
	TokenURL     string `envconfig:"CANTEEN_OAUTH_TOKEN_URL" default:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `envconfig:"CANTEEN_OAUTH_USERINFO_URL" default:"https://openidconnect.googleapis.com/v1/userinfo"`
}

type NotifyConfig struct {
	TTL time.Duration `envconfig:"CANTEEN_NOTIFY_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		// sqlite resolves an empty DSN to an in-memory database, which is
		// all dev needs.
		return nil
	}

	missing := []string{}
	for _, pair := range []struct{ env, val string }{
		{"CANTEEN_DB_HOST", db.Host},
		{"CANTEEN_DB_USER", db.User},
		{"CANTEEN_DB_NAME", db.Name},
	} {
		if pair.val == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CANTEEN_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

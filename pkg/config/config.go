package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Session   SessionConfig
	RateLimit AuthRateLimitConfig
	Sheets    SheetsConfig
	Orders    OrdersConfig
	Catalog   CatalogConfig
	Messaging MessagingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Sheets.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Orders.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"LEMON_APP_ENV" required:"true"`
	Port         string   `envconfig:"LEMON_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"LEMON_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"LEMON_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"LEMON_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"LEMON_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"LEMON_REDIS_URL"`
	Address      string        `envconfig:"LEMON_REDIS_ADDR"`
	Password     string        `envconfig:"LEMON_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEMON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEMON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEMON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEMON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEMON_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"LEMON_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// SessionConfig controls the signed client session token and how long a session survives in storage.
type SessionConfig struct {
	Secret string        `envconfig:"LEMON_SESSION_SECRET" required:"true"`
	Issuer string        `envconfig:"LEMON_SESSION_ISSUER" default:"lemon-storefront"`
	TTL    time.Duration `envconfig:"LEMON_SESSION_TTL" default:"720h"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"LEMON_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit  int           `envconfig:"LEMON_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"LEMON_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignUpWindow     time.Duration `envconfig:"LEMON_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignUpPhoneLimit int           `envconfig:"LEMON_AUTH_RATE_LIMIT_SIGNUP_PHONE_LIMIT" default:"3"`
	SignUpIPLimit    int           `envconfig:"LEMON_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// SheetsConfig points every record collection at its spreadsheet API endpoint.
type SheetsConfig struct {
	ProductsURL  string        `envconfig:"LEMON_SHEETS_PRODUCTS_URL" required:"true"`
	UsersURL     string        `envconfig:"LEMON_SHEETS_USERS_URL" required:"true"`
	AddressesURL string        `envconfig:"LEMON_SHEETS_ADDRESSES_URL" required:"true"`
	OrdersURL    string        `envconfig:"LEMON_SHEETS_ORDERS_URL" required:"true"`
	FeedbackURL  string        `envconfig:"LEMON_SHEETS_FEEDBACK_URL" required:"true"`
	APIToken     string        `envconfig:"LEMON_SHEETS_API_TOKEN"`
	Timeout      time.Duration `envconfig:"LEMON_SHEETS_TIMEOUT" default:"15s"`
	RatePerSec   float64       `envconfig:"LEMON_SHEETS_RATE_PER_SEC" default:"5"`
	Burst        int           `envconfig:"LEMON_SHEETS_BURST" default:"10"`
}

type OrdersConfig struct {
	Timezone    string        `envconfig:"LEMON_ORDER_TIMEZONE" default:"Asia/Kolkata"`
	InFlightTTL time.Duration `envconfig:"LEMON_ORDER_INFLIGHT_TTL" default:"30s"`
	DraftTTL    time.Duration `envconfig:"LEMON_DRAFT_TTL" default:"168h"`
}

// Location resolves the timezone used to stamp and group orders.
func (o OrdersConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(o.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading order timezone %q: %w", name, err)
	}
	return loc, nil
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"LEMON_CATALOG_CACHE_TTL" default:"5m"`
}

type MessagingConfig struct {
	WhatsAppNumber  string `envconfig:"LEMON_WHATSAPP_NUMBER"`
	WhatsAppBaseURL string `envconfig:"LEMON_WHATSAPP_BASE_URL" default:"https://wa.me"`
}

func (s SheetsConfig) validate() error {
	if s.RatePerSec < 0 {
		return fmt.Errorf("%s must not be negative", EnvSheetsRatePerSec)
	}
	if s.Burst < 0 {
		return fmt.Errorf("%s must not be negative", EnvSheetsBurst)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvSheetsTimeout)
	}
	return nil
}

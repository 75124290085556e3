package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App         AppConfig
	Session     SessionConfig
	Persistence PersistenceConfig
	Redis       RedisConfig
	DB          DBConfig
	Gateway     GatewayConfig
	Pricing     PricingConfig
	CORS        CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Persistence.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(cfg.Persistence); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type SessionConfig struct {
	Secret     string `envconfig:"STOREFRONT_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"STOREFRONT_SESSION_ISSUER" default:"storefront"`
	CookieName string `envconfig:"STOREFRONT_SESSION_COOKIE" default:"sf_session"`
	TTLHours   int    `envconfig:"STOREFRONT_SESSION_TTL_HOURS" default:"720"`
}

// TTL returns the session token lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 0
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// Persistence backends for cart state.
const (
	PersistenceMemory = "memory"
	PersistenceRedis  = "redis"
	PersistenceDB     = "db"
	PersistenceMirror = "mirror"
)

type PersistenceConfig struct {
	Backend string        `envconfig:"STOREFRONT_CART_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

func (p PersistenceConfig) validate() error {
	switch p.Backend {
	case PersistenceMemory, PersistenceRedis, PersistenceDB, PersistenceMirror:
		return nil
	default:
		return fmt.Errorf("unknown cart backend %q", p.Backend)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`

	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN(p PersistenceConfig) error {
	switch d.Driver {
	case "sqlite":
		if d.DSN == "" {
			d.DSN = d.SQLitePath
		}
		return nil
	case "postgres":
		if d.DSN == "" && (p.Backend == PersistenceDB || p.Backend == PersistenceMirror) {
			return fmt.Errorf("postgres driver requires STOREFRONT_DB_DSN")
		}
		return nil
	default:
		return fmt.Errorf("unknown db driver %q", d.Driver)
	}
}

type GatewayConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_GATEWAY_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_GATEWAY_TIMEOUT" default:"10s"`
}

type PricingConfig struct {
	FreeShippingOver string `envconfig:"STOREFRONT_FREE_SHIPPING_OVER" default:"100"`
	FlatShipping     string `envconfig:"STOREFRONT_FLAT_SHIPPING" default:"10"`
	TaxRate          string `envconfig:"STOREFRONT_TAX_RATE" default:"0.15"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

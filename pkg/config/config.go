package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Postgres struct {
	Host string `default:"localhost"`
	Port int    `default:"5432"`
	User string `default:"storefront"`
	Pass string `envconfig:"POSTGRES_PASSWORD"`
	DB   string `default:"storefront_db"`
}

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `split_words:"true" default:"info"`
	HTTPPort int    `split_words:"true" default:"8080"`

	// memory or postgres
	StorageDriver string `split_words:"true" default:"memory"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret"`

	// When empty the in-process cache backend is used.
	RedisURL string `envconfig:"REDIS_URL"`

	ListingCacheTTL time.Duration `split_words:"true" default:"5m"`
	SearchCacheTTL  time.Duration `split_words:"true" default:"3m"`
	CartCacheTTL    time.Duration `split_words:"true" default:"5m"`
	OrderCacheTTL   time.Duration `split_words:"true" default:"5m"`

	RefundWindow time.Duration `split_words:"true" default:"336h"`

	Postgres Postgres `envconfig:"POSTGRES"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

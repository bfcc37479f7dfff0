package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Routing  RoutingConfig
	Dispatch DispatchConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dispatch"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type RoutingConfig struct {
	BaseURL  string        `env:"ROUTING_URL, default=http://router.project-osrm.org"`
	CacheTTL time.Duration `env:"ROUTING_CACHE_TTL, default=10m"`
}

type DispatchConfig struct {
	// MaxMiles caps the trip length accepted for on-demand service.
	MaxMiles float64 `env:"DISPATCH_MAX_MILES, default=12"`
	// PaymentWorkers sizes the sharded payment-event worker pool.
	PaymentWorkers int `env:"DISPATCH_PAYMENT_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

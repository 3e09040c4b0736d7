// Package config loads application configuration from the environment and
// carries the dependency container handed to services.
package config

import "time"

// DB holds the relational store connection settings.
type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
}

// Jwt configures actor-token verification in the transport layer.
type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// Redis configures the settings cache and the redis event bus.
type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"payouts:"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// EventBus selects and configures the bus implementation.
type EventBus struct {
	// Driver is one of memory, redis, kafka.
	Driver       string `envconfig:"DRIVER" default:"memory"`
	RedisStream  string `envconfig:"REDIS_STREAM" default:"payouts:events"`
	RedisGroup   string `envconfig:"REDIS_GROUP" default:"payouts"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
}

// SettingsCache configures the read-through cache in front of the payout
// settings row.
type SettingsCache struct {
	Enabled bool          `envconfig:"ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"TTL" default:"5m"`
}

// RateLimit configures the transport's request limiter.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// Log configures slog output.
type Log struct {
	Level  int    `envconfig:"LEVEL" default:"0"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// App is the root configuration.
type App struct {
	Env             string        `envconfig:"ENV" default:"development"`
	DefaultCurrency string        `envconfig:"DEFAULT_CURRENCY" default:"INR"`
	DB              DB            `envconfig:"DB"`
	Jwt             Jwt           `envconfig:"JWT"`
	Redis           Redis         `envconfig:"REDIS"`
	EventBus        EventBus      `envconfig:"EVENT_BUS"`
	SettingsCache   SettingsCache `envconfig:"SETTINGS_CACHE"`
	RateLimit       RateLimit     `envconfig:"RATE_LIMIT"`
	Server          Server        `envconfig:"SERVER"`
	Log             Log           `envconfig:"LOG"`
}

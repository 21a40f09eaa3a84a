package config

import "time"

// Config holds relay and catalog cleaner configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// MaxMessageBytes caps a single inbound websocket frame.
	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// WSRateLimit is the number of inbound frames allowed per connection per minute (0 disables).
	WSRateLimit int `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`
	// ClientBuffer is the per-client outbound event queue length.
	ClientBuffer   int      `mapstructure:"client_buffer" yaml:"client_buffer"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
}

// RedisConfig describes the pub/sub connection the relay listens on.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel"`

	// PingInterval is how often the subscription connection is checked (0 disables).
	PingInterval time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
}

// CatalogConfig describes the recommendation API used by the catalog cleaner.
type CatalogConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
	// Concurrency limits in-flight deletes (0 means unlimited).
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8001",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		MaxMessageBytes:   64 << 10,
		WSRateLimit:       0,
		ClientBuffer:      64,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Channel:      "push",
			PingInterval: 5 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:  "http://developer.echonest.com/api/v4",
			PageSize: 100,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.WSRateLimit != 0 {
		c.WSRateLimit = other.WSRateLimit
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}

	if other.Redis.Addr != "" {
		c.Redis.Addr = other.Redis.Addr
	}
	if other.Redis.Password != "" {
		c.Redis.Password = other.Redis.Password
	}
	if other.Redis.DB != 0 {
		c.Redis.DB = other.Redis.DB
	}
	if other.Redis.Channel != "" {
		c.Redis.Channel = other.Redis.Channel
	}
	if other.Redis.PingInterval != 0 {
		c.Redis.PingInterval = other.Redis.PingInterval
	}

	if other.Catalog.BaseURL != "" {
		c.Catalog.BaseURL = other.Catalog.BaseURL
	}
	if other.Catalog.APIKey != "" {
		c.Catalog.APIKey = other.Catalog.APIKey
	}
	if other.Catalog.PageSize != 0 {
		c.Catalog.PageSize = other.Catalog.PageSize
	}
	if other.Catalog.Concurrency != 0 {
		c.Catalog.Concurrency = other.Catalog.Concurrency
	}
	if other.Catalog.Timeout != 0 {
		c.Catalog.Timeout = other.Catalog.Timeout
	}
}

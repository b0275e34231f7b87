package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Reset    ResetConfig    `yaml:"reset"`
	Session  SessionConfig  `yaml:"session"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string     `yaml:"host"`
	Port     int        `yaml:"port"`
	User     string     `yaml:"user"`
	Password string     `yaml:"password"`
	Name     string     `yaml:"name"`
	SSLMode  string     `yaml:"ssl_mode"`
	SeedDemo bool       `yaml:"seed_demo"`
	Pool     PoolConfig `yaml:"pool"`
}

type PoolConfig struct {
	MaxConns              int `yaml:"max_conns"`
	MinConns              int `yaml:"min_conns"`
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	AcquireRetries        int `yaml:"acquire_retries"`
	RetryDelaySeconds     int `yaml:"retry_delay_seconds"`
	BatchSize             int `yaml:"batch_size"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string       `yaml:"brokers"`
	NotificationsTopic string         `yaml:"notifications_topic"`
	GroupID            string         `yaml:"group_id"`
	Consumer           ConsumerConfig `yaml:"consumer"`
}

type ConsumerConfig struct {
	MinBytes              int `yaml:"min_bytes"`
	MaxBytes              int `yaml:"max_bytes"`
	HeartbeatSeconds      int `yaml:"heartbeat_seconds"`
	SessionTimeoutSeconds int `yaml:"session_timeout_seconds"`
}

type BookingConfig struct {
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
	PNRAttempts           int `yaml:"pnr_attempts"`
}

type ResetConfig struct {
	TokenTTLMinutes   int    `yaml:"token_ttl_minutes"`
	RateLimit         int    `yaml:"rate_limit"`
	RateWindowMinutes int    `yaml:"rate_window_minutes"`
	LinkBase          string `yaml:"link_base"`
}

type SessionConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

type WorkerConfig struct {
	CleanupSweepMinutes int `yaml:"cleanup_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Pool.MaxConns == 0 {
		c.Database.Pool.MaxConns = 10
	}
	if c.Database.Pool.MinConns == 0 {
		c.Database.Pool.MinConns = 5
	}
	if c.Database.Pool.ConnectTimeoutSeconds == 0 {
		c.Database.Pool.ConnectTimeoutSeconds = 30
	}
	if c.Database.Pool.AcquireRetries == 0 {
		c.Database.Pool.AcquireRetries = 3
	}
	if c.Database.Pool.RetryDelaySeconds == 0 {
		c.Database.Pool.RetryDelaySeconds = 2
	}
	if c.Database.Pool.BatchSize == 0 {
		c.Database.Pool.BatchSize = 100
	}
	if c.Booking.SearchCacheTTLSeconds == 0 {
		c.Booking.SearchCacheTTLSeconds = 300
	}
	if c.Booking.PNRAttempts == 0 {
		c.Booking.PNRAttempts = 5
	}
	if c.Reset.TokenTTLMinutes == 0 {
		c.Reset.TokenTTLMinutes = 60
	}
	if c.Reset.RateLimit == 0 {
		c.Reset.RateLimit = 3
	}
	if c.Reset.RateWindowMinutes == 0 {
		c.Reset.RateWindowMinutes = 60
	}
	if c.Reset.LinkBase == "" {
		c.Reset.LinkBase = "http://localhost:8080/reset-password.html"
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = 24
	}
	if c.Kafka.Consumer.MinBytes == 0 {
		c.Kafka.Consumer.MinBytes = 10e3
	}
	if c.Kafka.Consumer.MaxBytes == 0 {
		c.Kafka.Consumer.MaxBytes = 10e6
	}
	if c.Kafka.Consumer.HeartbeatSeconds == 0 {
		c.Kafka.Consumer.HeartbeatSeconds = 3
	}
	if c.Kafka.Consumer.SessionTimeoutSeconds == 0 {
		c.Kafka.Consumer.SessionTimeoutSeconds = 30
	}
	if c.Worker.CleanupSweepMinutes == 0 {
		c.Worker.CleanupSweepMinutes = 15
	}
}

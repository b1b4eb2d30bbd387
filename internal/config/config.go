package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// UpstreamConfig points at the order backend's socket endpoint.
type UpstreamConfig struct {
	SocketURL     string        `mapstructure:"socket_url"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// BridgeConfig selects the session role for this notifier instance.
type BridgeConfig struct {
	// Role is "ADMIN" or "VENDOR".
	Role string `mapstructure:"role"`
	// VendorID is required when role is VENDOR.
	VendorID string `mapstructure:"vendor_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

type StorageConfig struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver     string         `mapstructure:"driver"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Postgres   DatabaseConfig `mapstructure:"postgres"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
	Topics          []string `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: TERANGO_NOTIF_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", "8095")
	v.SetDefault("server.env", "development")
	v.SetDefault("upstream.socket_url", "ws://localhost:8080/socket")
	v.SetDefault("upstream.retry_attempts", 5)
	v.SetDefault("upstream.retry_delay", 3*time.Second)
	v.SetDefault("bridge.role", "ADMIN")
	v.SetDefault("bridge.vendor_id", "")
	v.SetDefault("bridge.enabled", true)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "notifier.db")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.name", "terango")
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.password", "password")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group_id", "terango-notifier-group")
	v.SetDefault("kafka.topics", []string{"terango-order-events"})
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")

	// Environment variables (e.g. UPSTREAM_SOCKET_URL -> upstream.socket_url)
	v.SetEnvPrefix("TERANGO_NOTIF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support simple env vars without prefix for Docker Compose convenience
	v.BindEnv("upstream.socket_url", "SOCKET_URL")
	v.BindEnv("bridge.role", "BRIDGE_ROLE")
	v.BindEnv("bridge.vendor_id", "VENDOR_ID")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.postgres.host", "DB_HOST")
	v.BindEnv("storage.postgres.port", "DB_PORT")
	v.BindEnv("storage.postgres.name", "DB_NAME")
	v.BindEnv("storage.postgres.user", "DB_USER")
	v.BindEnv("storage.postgres.password", "DB_PASSWORD")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("server.port", "PORT")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Bridge.Role == "VENDOR" && cfg.Bridge.VendorID == "" {
		return nil, fmt.Errorf("bridge.vendor_id is required when bridge.role is VENDOR")
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" dbname=" + d.Name +
		" user=" + d.User +
		" password=" + d.Password +
		" sslmode=disable"
}

package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストアのバックエンド
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env            string
	Server         ServerConfig
	Store          StoreConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Booking        BookingConfig
	Pricing        PricingConfig
	AMQP           AMQPConfig
	Metrics        MetricsConfig
	MigrationsPath string
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowOrigins    []string
}

// StoreConfig はストア設定
type StoreConfig struct {
	Backend string
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingConfig は予約ライフサイクルの設定
type BookingConfig struct {
	PendingTTL     time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
	SweepLockTTL   time.Duration
}

// PricingConfig は価格ポリシーの設定
type PricingConfig struct {
	Policy         string
	SurgeThreshold float64
	MaxMultiplier  float64
}

// AMQPConfig は予約通知の送信先設定
// URL が空の場合は通知を送信しない
type AMQPConfig struct {
	URL      string
	Exchange string
}

// MetricsConfig はメトリクスエンドポイントの設定
type MetricsConfig struct {
	Username string
	Password string
}

// BasicAuthEnabled は /metrics に Basic 認証を掛けるかを返す
func (c MetricsConfig) BasicAuthEnabled() bool {
	return c.Username != "" && c.Password != ""
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowOrigins:    getListEnv("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "session_booking"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Booking: BookingConfig{
			PendingTTL:     getPositiveDurationEnv("BOOKING_PENDING_TTL", 15*time.Minute),
			SweepInterval:  getPositiveDurationEnv("BOOKING_SWEEP_INTERVAL", 30*time.Second),
			SweepBatchSize: getIntEnv("BOOKING_SWEEP_BATCH_SIZE", 100),
			SweepLockTTL:   getPositiveDurationEnv("BOOKING_SWEEP_LOCK_TTL", 25*time.Second),
		},
		Pricing: PricingConfig{
			Policy:         getEnv("PRICING_POLICY", "flat"),
			SurgeThreshold: getFloatEnv("PRICING_SURGE_THRESHOLD", 0.5),
			MaxMultiplier:  getFloatEnv("PRICING_MAX_MULTIPLIER", 2.0),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "booking.events"),
		},
		Metrics: MetricsConfig{
			Username: getEnv("METRICS_USERNAME", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
	}

	// PaaS 形式の接続URLが設定されていれば個別設定より優先する
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		applyDatabaseURL(&cfg.Database, dsn)
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		applyRedisURL(&cfg.Redis, addr)
	}
	return cfg
}

// IsProduction は本番環境かを返す
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func applyDatabaseURL(c *DatabaseConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	c.Host = u.Hostname()
	if port := u.Port(); port != "" {
		c.Port = port
	}
	if u.User != nil {
		c.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			c.Password = p
		}
	}
	c.DBName = strings.TrimPrefix(u.Path, "/")
	// 外部ホストへの接続はデフォルトで TLS を要求する
	c.SSLMode = "require"
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.SSLMode = mode
	}
}

func applyRedisURL(c *RedisConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	c.Enabled = true
	c.Host = u.Hostname()
	if port := u.Port(); port != "" {
		c.Port = port
	}
	if u.User != nil {
		if p, ok := u.User.Password(); ok {
			c.Password = p
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			c.DB = n
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getPositiveDurationEnv は0以下の期間をデフォルト値に置き換える
func getPositiveDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if d := getDurationEnv(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

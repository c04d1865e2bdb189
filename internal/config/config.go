package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full runtime configuration read from the environment.
type Config struct {
	Port     string
	Env      string
	LogLevel string
	Storage  string

	DB    DBConfig
	Redis RedisConfig
	Kafka KafkaConfig

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string
}

// DBConfig holds the PostgreSQL connection and pool settings.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LockTimeout     time.Duration
}

// RedisConfig holds the balance cache settings. An empty Host disables the cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds the entry event publisher settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:     GetEnv("PORT", "3000"),
		Env:      GetEnv("ENV", "development"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		Storage:  GetEnv("STORAGE", StoragePostgres),
		DB: DBConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "purse"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			LockTimeout:     GetDurationEnv("DB_LOCK_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      GetDurationEnv("BALANCE_CACHE_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(GetEnv("KAFKA_BROKERS", "")),
			Topic:        GetEnv("KAFKA_TOPIC", "ledger.entries"),
			WriteTimeout: GetDurationEnv("KAFKA_WRITE_TIMEOUT", 2*time.Second),
		},
		JWTSecret:   GetEnv("JWT_SECRET", "purse-dev-secret"),
		TokenTTL:    GetDurationEnv("TOKEN_TTL", 24*time.Hour),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

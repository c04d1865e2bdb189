package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Kafka.WriteTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_WRITE_TIMEOUT", "500ms")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.WriteTimeout)
	assert.Equal(t, 0, cfg.Redis.DB)
}

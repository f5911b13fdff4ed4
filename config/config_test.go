package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Mongo.Transactions)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("PAGE_SIZE", "not-a-number")

	cfg := LoadEnv()

	assert.Equal(t, 3, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Mongo.Transactions)
	assert.Equal(t, 20, cfg.Inventory.PageSize)
}

package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-warehouse/config"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/broker"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/cache"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/database"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/mongodb"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/search"
)

func openPostgres(cfg *config.Config) (*sqlx.DB, error) {
	return database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
}

// openRedis returns nil when REDIS_ADDR is unset or unreachable.
func openRedis(cfg *config.Config, log logger.ZapLogger) *cache.RedisClient {
	if cfg.Redis.Addr == "" {
		log.Info("Redis not configured, stock locks and list cache disabled")
		return nil
	}
	client, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Could not connect to Redis, continuing without it", zap.Error(err))
		return nil
	}
	log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return client
}

func openKafka(cfg *config.Config, log logger.ZapLogger) *broker.Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("Kafka not configured, movement events disabled")
		return nil
	}
	p := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	log.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return p
}

func openElastic(cfg *config.Config, log logger.ZapLogger) *search.Client {
	if len(cfg.Elastic.Addresses) == 0 {
		log.Info("Elasticsearch not configured, product search uses Postgres")
		return nil
	}
	client, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		log.Warn("Could not create Elasticsearch client (search features might be limited)", zap.Error(err))
		return nil
	}
	log.Info("Elasticsearch client ready", zap.Strings("addresses", cfg.Elastic.Addresses))
	return client
}

// openMongo returns nils when the task board store is unavailable.
func openMongo(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*mongo.Client, *mongo.Database) {
	if cfg.Mongo.URI == "" {
		log.Info("Mongo not configured, task boards disabled")
		return nil, nil
	}
	client, db, err := mongodb.Connect(ctx, &mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.DB})
	if err != nil {
		log.Warn("Could not connect to Mongo, task boards disabled", zap.Error(err))
		return nil, nil
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Warn("Could not ensure Mongo indexes", zap.Error(err))
	}
	log.Info("Connected to Mongo", zap.String("db", cfg.Mongo.DB), zap.Bool("transactions", cfg.Mongo.Transactions))
	return client, db
}

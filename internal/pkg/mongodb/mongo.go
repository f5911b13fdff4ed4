package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI      string
	Database string
}

// Connect dials the cluster and verifies the primary is reachable.
func Connect(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// IndexModels lists the indexes per collection. One profile per email is enforced in users.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"tasks": {
			{Keys: bson.D{{Key: "board_id", Value: 1}}},
			{Keys: bson.D{{Key: "board_id", Value: 1}, {Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "board_id", Value: 1}, {Key: "assigned_to", Value: 1}}},
		},
		"boards": {
			{Keys: bson.D{{Key: "member_ids", Value: 1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

// EnsureIndexes creates the indexes the board and task repositories query by.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, coll := range []string{"tasks", "boards", "users"} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, IndexModels()[coll]); err != nil {
			return fmt.Errorf("%s indexes: %w", coll, err)
		}
	}
	return nil
}

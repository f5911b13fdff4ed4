package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

const boardsCollection = "boards"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(boardsCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, b *model.Board) error {
	_, err := r.coll.InsertOne(ctx, b)
	return err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*model.Board, error) {
	var b model.Board
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *MongoRepository) FindByMember(ctx context.Context, userID string) ([]model.Board, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"creator_id": userID},
		bson.M{"member_ids": userID},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	boards := []model.Board{}
	if err := cur.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *MongoRepository) Update(ctx context.Context, b *model.Board) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": b.ID}, bson.M{"$set": bson.M{
		"name":        b.Name,
		"description": b.Description,
		"updated_at":  b.UpdatedAt,
	}})
	return err
}

func (r *MongoRepository) AddMember(ctx context.Context, boardID, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": boardID}, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *MongoRepository) RemoveMember(ctx context.Context, boardID, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": boardID}, bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

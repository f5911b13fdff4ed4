package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

const tasksCollection = "tasks"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(tasksCollection)}
}

// duplicate maps the unique (board_id, title) index onto ErrDuplicateTitle.
func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrDuplicateTitle
	}
	return err
}

func (r *MongoRepository) Create(ctx context.Context, t *model.Task) error {
	_, err := r.coll.InsertOne(ctx, t)
	return duplicate(err)
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoRepository) FindByBoard(ctx context.Context, boardID string) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completed", Value: 1}, {Key: "due_date", Value: 1}, {Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"board_id": boardID}, opts)
	if err != nil {
		return nil, err
	}
	tasks := []model.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *MongoRepository) TitleExists(ctx context.Context, boardID, title, excludeID string) (bool, error) {
	filter := bson.M{"board_id": boardID, "title": title}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *MongoRepository) Update(ctx context.Context, t *model.Task) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	return duplicate(err)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoRepository) CountByBoard(ctx context.Context, boardID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"board_id": boardID})
}

// UnassignUser rewrites every task of the board that assigns userID in a single bulk write.
func (r *MongoRepository) UnassignUser(ctx context.Context, boardID, userID string) (int, error) {
	cur, err := r.coll.Find(ctx, bson.M{"board_id": boardID, "assigned_to": userID})
	if err != nil {
		return 0, err
	}
	var tasks []model.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if !t.Unassign(userID) {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetUpdate(bson.M{"$set": bson.M{
				"assigned_to": t.AssignedTo,
				"unassigned":  t.Unassigned,
				"updated_at":  now,
			}}))
	}
	if len(writes) == 0 {
		return 0, nil
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

package repository

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fekuna/omnipos-warehouse/internal/model"
)

const usersCollection = "users"

// MemberRepository keeps one profile per identity subject. Emails are stored lower-cased.
type MemberRepository struct {
	coll *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{coll: db.Collection(usersCollection)}
}

func (r *MemberRepository) Upsert(ctx context.Context, m *model.Member) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": m.ID},
		bson.M{"$set": bson.M{
			"email":        strings.ToLower(m.Email),
			"display_name": m.DisplayName,
			"last_login":   m.LastLogin,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MemberRepository) findOne(ctx context.Context, filter bson.M) (*model.Member, error) {
	var m model.Member
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MemberRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Member, error) {
	members := []model.Member{}
	if len(ids) == 0 {
		return members, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexModels_UniqueKeys(t *testing.T) {
	models := IndexModels()

	unique := func(coll string, keys bson.D) bool {
		for _, m := range models[coll] {
			if assert.ObjectsAreEqual(keys, m.Keys) {
				return m.Options != nil && m.Options.Unique != nil && *m.Options.Unique
			}
		}
		t.Fatalf("no %s index on %v", coll, keys)
		return false
	}

	assert.True(t, unique("users", bson.D{{Key: "email", Value: 1}}))
	assert.True(t, unique("tasks", bson.D{{Key: "board_id", Value: 1}, {Key: "title", Value: 1}}))
	assert.False(t, unique("tasks", bson.D{{Key: "board_id", Value: 1}}))
	require.Len(t, models["boards"], 1)
}

package gateway

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBSONDoc_ResolvesServerTimestamp(t *testing.T) {
	g := &MongoDocuments{}
	before := time.Now().UTC()

	doc := g.bsonDoc(Fields{
		"title":     "Launch Day",
		"createdAt": ServerTimestamp(),
	})

	assert.Equal(t, "Launch Day", doc["title"])
	ts, ok := doc["createdAt"].(time.Time)
	require.True(t, ok)
	assert.False(t, ts.Before(before))
}

func TestDecodeDocument(t *testing.T) {
	raw := bson.M{
		"_id":        "p1",
		"title":      "Launch Day",
		"categories": primitive.A{"Tech", "Science"},
		"createdAt":  primitive.NewDateTimeFromTime(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}

	doc := decodeDocument(raw)

	assert.Equal(t, "p1", doc.ID)
	assert.Equal(t, "Launch Day", doc.Fields["title"])
	assert.Equal(t, []any{"Tech", "Science"}, doc.Fields["categories"])
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), doc.Fields["createdAt"])
	assert.NotContains(t, doc.Fields, "_id")
}

func TestDecodeDocument_ObjectIDFallback(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := decodeDocument(bson.M{"_id": oid, "title": "Imported"})
	assert.Equal(t, oid.Hex(), doc.ID)
}

func TestServerTimestampSentinel(t *testing.T) {
	assert.True(t, IsServerTimestamp(ServerTimestamp()))
	assert.False(t, IsServerTimestamp(time.Now()))
	assert.False(t, IsServerTimestamp(nil))
}

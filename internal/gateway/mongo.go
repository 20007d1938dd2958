package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocuments implements DocumentGateway on a MongoDB database. Document
// ids are stored as plain strings so caller-chosen ids (session subject
// values) and gateway-assigned ids live in the same keyspace.
type MongoDocuments struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials the MongoDB deployment and verifies the connection.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoDocuments, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Println("MongoDB connected successfully")
	return &MongoDocuments{client: client, db: client.Database(dbName)}, nil
}

// Ping verifies the connection is still alive.
func (g *MongoDocuments) Ping(ctx context.Context) error {
	return g.client.Ping(ctx, nil)
}

// Disconnect closes the underlying client.
func (g *MongoDocuments) Disconnect(ctx context.Context) error {
	if g.client == nil {
		return nil
	}
	return g.client.Disconnect(ctx)
}

func (g *MongoDocuments) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	id := primitive.NewObjectID().Hex()
	doc := g.bsonDoc(fields)
	doc["_id"] = id
	if _, err := g.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (g *MongoDocuments) Set(ctx context.Context, collection, id string, fields Fields) error {
	opts := options.Replace().SetUpsert(true)
	doc := g.bsonDoc(fields)
	_, err := g.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	return err
}

func (g *MongoDocuments) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := g.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw), nil
}

func (g *MongoDocuments) List(ctx context.Context, collection string) ([]Document, error) {
	return g.find(ctx, collection, bson.M{})
}

func (g *MongoDocuments) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return g.find(ctx, collection, bson.M{field: value})
}

func (g *MongoDocuments) find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	cursor, err := g.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, *decodeDocument(raw))
	}
	return docs, cursor.Err()
}

func (g *MongoDocuments) Update(ctx context.Context, collection, id string, fields Fields) error {
	_, err := g.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": g.bsonDoc(fields)})
	return err
}

func (g *MongoDocuments) Delete(ctx context.Context, collection, id string) error {
	_, err := g.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (g *MongoDocuments) AddToSet(ctx context.Context, collection, id, field string, value any) error {
	_, err := g.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$addToSet": bson.M{field: value}})
	return err
}

func (g *MongoDocuments) RemoveFromSet(ctx context.Context, collection, id, field string, value any) error {
	_, err := g.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$pull": bson.M{field: value}})
	return err
}

// bsonDoc converts a payload to BSON, resolving timestamp sentinels with the
// gateway's clock so the value is never the caller's.
func (g *MongoDocuments) bsonDoc(fields Fields) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		if IsServerTimestamp(v) {
			doc[k] = time.Now().UTC()
			continue
		}
		doc[k] = v
	}
	return doc
}

func decodeDocument(raw bson.M) *Document {
	doc := &Document{Fields: Fields{}}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case string:
				doc.ID = id
			case primitive.ObjectID:
				doc.ID = id.Hex()
			}
			continue
		}
		doc.Fields[k] = normalizeValue(v)
	}
	return doc
}

// normalizeValue maps BSON decode types back to the types callers wrote.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}

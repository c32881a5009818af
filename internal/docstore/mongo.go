package docstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/dberrors"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// MongoStore maps each collection onto a Mongo collection of the same name.
// New documents get string uuids as _id; documents imported with ObjectIDs
// are still addressable by their hex form.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a MongoStore over an open database handle
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// FindBy implements Store
func (s *MongoStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return s.find(ctx, collection, bson.M{field: value}, "find "+collection)
}

// All implements Store
func (s *MongoStore) All(ctx context.Context, collection string) ([]Document, error) {
	return s.find(ctx, collection, bson.M{}, "list "+collection)
}

// Get implements Store
func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if err != nil {
		return nil, dberrors.Translate(err, fmt.Sprintf("get %s/%s", collection, id))
	}
	doc := fromBSON(raw)
	return &doc, nil
}

// Add implements Store
func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		logger.Error().Err(err).Str("collection", collection).Msg("Error inserting document")
		return "", dberrors.Translate(err, "add "+collection)
	}
	return id, nil
}

// Update implements Store
func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error updating document")
		return dberrors.Translate(err, fmt.Sprintf("update %s/%s", collection, id))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, apperrors.ErrResourceNotFound)
	}
	return nil
}

// Close disconnects the underlying client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.M, op string) ([]Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying documents")
		return nil, dberrors.Translate(err, op)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrDataIntegrity, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, dberrors.Translate(err, op)
	}
	return docs, nil
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func fromBSON(raw bson.M) Document {
	id, _ := AsString(raw["_id"])
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		data[k] = normalizeBSON(v)
	}
	return Document{ID: id, Data: data}
}

func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time()
	case int32:
		return int64(t)
	case primitive.ObjectID:
		return t.Hex()
	case bson.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeBSON(inner)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeBSON(inner)
		}
		return out
	default:
		return v
	}
}

package database

import (
	"context"
	"fmt"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPickRepository reads user pick documents. Picks are written by the
// submission UI; this service only ever reads them.
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickRepository creates a new MongoDB pick repository
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	return &MongoPickRepository{
		collection: db.GetCollection("picks"),
		logger:     logging.WithPrefix("PickRepo"),
	}
}

// GetAll loads every user's pick document. Each document holds one entry per
// week keyed by the composite week key (or the legacy seasonless key for
// pre-migration data); top-level fields that are not week entries are
// skipped.
func (r *MongoPickRepository) GetAll(ctx context.Context) ([]models.PickDocument, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find pick documents: %w", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode pick documents: %w", err)
	}

	docs := make([]models.PickDocument, 0, len(raw))
	for _, doc := range raw {
		uid := documentID(doc["_id"])
		if uid == "" {
			r.logger.Warn("Skipping pick document without usable _id")
			continue
		}

		weeks := make(map[string]map[string]interface{})
		for key, value := range doc {
			if key == "_id" {
				continue
			}
			if entry, ok := asDocument(value); ok {
				weeks[key] = entry
			}
		}

		docs = append(docs, models.PickDocument{UID: uid, Weeks: weeks})
	}

	return docs, nil
}

// documentID normalizes the _id field to a string user id
func documentID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	default:
		return ""
	}
}

// asDocument normalizes an embedded document value
func asDocument(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case bson.M:
		return v, true
	case map[string]interface{}:
		return v, true
	case bson.D:
		return v.Map(), true
	default:
		return nil, false
	}
}

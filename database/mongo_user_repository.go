package database

import (
	"context"
	"fmt"

	"nfl-pickem-go/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository reads user profile documents
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *MongoDB) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.GetCollection("users"),
		logger:     logging.WithPrefix("UserRepo"),
	}
}

// GetDisplayNames loads the display name for every user, keyed by user id
func (r *MongoUserRepository) GetDisplayNames(ctx context.Context) (map[string]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []struct {
		ID          interface{} `bson:"_id"`
		DisplayName string      `bson:"displayName"`
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		uid := documentID(user.ID)
		if uid == "" {
			continue
		}
		names[uid] = user.DisplayName
	}

	return names, nil
}

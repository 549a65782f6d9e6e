package database

import (
	"context"
	"fmt"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWeeklyResultsRepository persists computed weekly results
type MongoWeeklyResultsRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoWeeklyResultsRepository creates a new MongoDB weekly results repository
func NewMongoWeeklyResultsRepository(db *MongoDB) *MongoWeeklyResultsRepository {
	return &MongoWeeklyResultsRepository{
		collection: db.GetCollection("weekly_results"),
		logger:     logging.WithPrefix("WeeklyResults"),
	}
}

// Upsert writes a weekly result as a merge keyed by its composite id.
// Writing the same content twice leaves the document equivalent; fields not
// included in the update survive.
func (r *MongoWeeklyResultsRepository) Upsert(ctx context.Context, result *models.WeeklyResult) error {
	filter := bson.M{"_id": result.ID}

	update := bson.M{
		"$set": bson.M{
			"year":          result.Year,
			"season":        result.Season,
			"week":          result.Week,
			"lastGameTotal": result.LastGameTotal,
			"computedAt":    result.ComputedAt,
			"standings":     result.Standings,
			"winners":       result.Winners,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert weekly result %s: %w", result.ID, err)
	}

	r.logger.Infof("Upserted weekly result %s: %d standings, %d winners",
		result.ID, len(result.Standings), len(result.Winners))
	return nil
}

// Exists reports whether a result document is already stored under the key
func (r *MongoWeeklyResultsRepository) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check weekly result %s: %w", key, err)
	}
	return count > 0, nil
}

// GetByKey loads a stored weekly result, returning nil when absent
func (r *MongoWeeklyResultsRepository) GetByKey(ctx context.Context, key string) (*models.WeeklyResult, error) {
	var result models.WeeklyResult
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load weekly result %s: %w", key, err)
	}
	return &result, nil
}

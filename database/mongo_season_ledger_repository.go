package database

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSeasonLedgerRepository persists cumulative per-user season stats
type MongoSeasonLedgerRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoSeasonLedgerRepository creates a new MongoDB season ledger repository
func NewMongoSeasonLedgerRepository(db *MongoDB) *MongoSeasonLedgerRepository {
	return &MongoSeasonLedgerRepository{
		collection: db.GetCollection("season_leaderboard"),
		logger:     logging.WithPrefix("SeasonLedger"),
	}
}

// Get loads the season ledger document, returning nil when absent
func (r *MongoSeasonLedgerRepository) Get(ctx context.Context, seasonKey string) (*models.SeasonLedger, error) {
	var ledger models.SeasonLedger
	err := r.collection.FindOne(ctx, bson.M{"_id": seasonKey}).Decode(&ledger)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load season ledger %s: %w", seasonKey, err)
	}
	return &ledger, nil
}

// ApplyWeek folds one scored week into every contributing user's record and
// writes the updated players map back as a merge. Weeks already present in a
// user's history only refresh that entry; cumulative counters are guarded
// against double counting inside PlayerRecord.RecordWeek.
func (r *MongoSeasonLedgerRepository) ApplyWeek(ctx context.Context, year int, season string, weekLabel string, standings []models.StandingEntry, now time.Time) error {
	seasonKey := models.SeasonKey(year, season)

	ledger, err := r.Get(ctx, seasonKey)
	if err != nil {
		return err
	}

	players := make(map[string]models.PlayerRecord)
	if ledger != nil && ledger.Players != nil {
		players = ledger.Players
	}

	for _, entry := range standings {
		record := players[entry.UID]
		record.RecordWeek(weekLabel, entry.Wins, entry.DisplayName)
		players[entry.UID] = record
	}

	update := bson.M{
		"$set": bson.M{
			"year":      year,
			"season":    season,
			"updatedAt": now,
			"players":   players,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": seasonKey}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert season ledger %s: %w", seasonKey, err)
	}

	r.logger.Infof("Applied week %s to season ledger %s for %d users", weekLabel, seasonKey, len(standings))
	return nil
}

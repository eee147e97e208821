package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dareroom/internal/model"
)

// HistoryRepo stores per-player game records, append-only.
type HistoryRepo interface {
	Append(ctx context.Context, records []model.GameRecord) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]model.GameRecord, error)
}

type historyRepo struct {
	collection *mongo.Collection
}

func NewHistoryRepo(db *mongo.Database) HistoryRepo {
	return &historyRepo{
		collection: db.Collection("game_history"),
	}
}

func (r *historyRepo) Append(ctx context.Context, records []model.GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *historyRepo) ListByPlayer(ctx context.Context, playerID string, limit int) ([]model.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "playedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"playerId": playerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []model.GameRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

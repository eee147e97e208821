package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dareroom/internal/model"
)

// ReplayRepo is the append-only archive of completed dares with replay
// references, listed most-recent-first.
type ReplayRepo interface {
	Append(ctx context.Context, entry *model.ReplayEntry) error
	List(ctx context.Context, limit int) ([]model.ReplayEntry, error)
	GetByID(ctx context.Context, id string) (*model.ReplayEntry, error)
	AddVote(ctx context.Context, id string) error
}

type replayRepo struct {
	collection *mongo.Collection
}

func NewReplayRepo(db *mongo.Database) ReplayRepo {
	return &replayRepo{
		collection: db.Collection("replays"),
	}
}

func (r *replayRepo) Append(ctx context.Context, entry *model.ReplayEntry) error {
	if entry.ArchivedAt.IsZero() {
		entry.ArchivedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *replayRepo) List(ctx context.Context, limit int) ([]model.ReplayEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "archivedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []model.ReplayEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *replayRepo) GetByID(ctx context.Context, id string) (*model.ReplayEntry, error) {
	var entry model.ReplayEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *replayRepo) AddVote(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"votes": 1}})
	return err
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dareroom/internal/model"
)

type ProfileRepo interface {
	Create(ctx context.Context, profile *model.PlayerProfile) error
	GetByID(ctx context.Context, id string) (*model.PlayerProfile, error)
	Update(ctx context.Context, profile *model.PlayerProfile) error
}

type profileRepo struct {
	collection *mongo.Collection
}

func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		collection: db.Collection("profiles"),
	}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.PlayerProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.BadgeTiers == nil {
		profile.BadgeTiers = make(map[string]int)
	}
	_, err := r.collection.InsertOne(ctx, profile)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.PlayerProfile, error) {
	var profile model.PlayerProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *model.PlayerProfile) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	return err
}

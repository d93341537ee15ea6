package hostRepo

import (
	"context"
	"errors"

	"talkbid/database"
	"talkbid/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no host profile matches the query.
var ErrNotFound = errors.New("host profile not found")

type HostRepository interface {
	Upsert(ctx context.Context, host models.HostProfile) (string, error)
	GetByID(ctx context.Context, id string) (*models.HostProfile, error)
}

type mongoHostRepo struct {
	coll *mongo.Collection
}

// NewMongoHostRepo returns a HostRepository backed by MongoDB.
func NewMongoHostRepo() HostRepository {
	db := database.MongoClient.Database("talkbid")
	repo := &mongoHostRepo{
		coll: db.Collection("hosts"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(err)
	}
	return repo
}

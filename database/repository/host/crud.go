package hostRepo

import (
	"context"
	"errors"
	"time"

	"talkbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upsert creates or replaces a host profile and returns its ID.
func (r *mongoHostRepo) Upsert(ctx context.Context, host models.HostProfile) (string, error) {
	if host.ID == "" {
		host.ID = uuid.New().String()
	}
	host.UpdatedAt = time.Now()
	if host.CreatedAt.IsZero() {
		host.CreatedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"id": host.ID}, host, opts); err != nil {
		return "", err
	}
	return host.ID, nil
}

// GetByID returns a host profile by its ID.
func (r *mongoHostRepo) GetByID(ctx context.Context, id string) (*models.HostProfile, error) {
	var host models.HostProfile
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&host)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}

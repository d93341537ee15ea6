package eventRepo

import (
	"context"

	"talkbid/database"
	"talkbid/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CallEventRepository is the append-only event log store. Events are never
// mutated or removed after insert.
type CallEventRepository interface {
	Append(ctx context.Context, event models.CallEvent) (string, error)
	// ListByBookingID returns the booking's full event log ordered by
	// provider event timestamp (ingestion time as tiebreak). Delivery order
	// is not occurrence order, so consumers must not rely on insert order.
	ListByBookingID(ctx context.Context, bookingID string) ([]models.CallEvent, error)
}

type mongoCallEventRepo struct {
	coll *mongo.Collection
}

// NewMongoCallEventRepo returns a CallEventRepository backed by MongoDB.
func NewMongoCallEventRepo() CallEventRepository {
	db := database.MongoClient.Database("talkbid")
	repo := &mongoCallEventRepo{
		coll: db.Collection("call_events"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(err)
	}
	return repo
}

package eventRepo

import (
	"context"
	"time"

	"talkbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts one call event and returns its ID.
func (r *mongoCallEventRepo) Append(ctx context.Context, event models.CallEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return "", err
	}
	return event.ID, nil
}

// ListByBookingID fetches all events for a booking sorted by event time.
func (r *mongoCallEventRepo) ListByBookingID(ctx context.Context, bookingID string) ([]models.CallEvent, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "eventAt", Value: 1},
		{Key: "receivedAt", Value: 1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{"bookingId": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.CallEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

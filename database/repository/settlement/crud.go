package settlementRepo

import (
	"context"
	"errors"
	"time"

	"talkbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new settlement record and returns its ID.
func (r *mongoSettlementRepo) Create(ctx context.Context, record models.SettlementRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrAlreadyExists
	}
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByID returns a settlement record by its ID.
func (r *mongoSettlementRepo) GetByID(ctx context.Context, id string) (*models.SettlementRecord, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// GetByBookingID returns the booking's settlement record, if one exists.
func (r *mongoSettlementRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.SettlementRecord, error) {
	return r.findOne(ctx, bson.M{"bookingId": bookingID})
}

func (r *mongoSettlementRepo) findOne(ctx context.Context, filter bson.M) (*models.SettlementRecord, error) {
	var record models.SettlementRecord
	err := r.coll.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ClaimPayoutRef writes the payout reference only when it is still unset, so
// concurrent payout attempts have exactly one winner.
func (r *mongoSettlementRepo) ClaimPayoutRef(ctx context.Context, id string, payoutRef string) (bool, error) {
	filter := bson.M{"id": id, "payoutRef": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"payoutRef": payoutRef,
		"status":    models.SettlementStatusPaidOut,
		"updatedAt": time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

package bookingRepo

import (
	"context"
	"errors"
	"time"

	"talkbid/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new booking and returns its ID.
func (r *mongoBookingRepo) Create(ctx context.Context, booking models.Booking) (string, error) {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return "", err
	}
	return booking.ID, nil
}

// GetByID returns a booking by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByRoomName resolves the booking a provider webhook delivery belongs to.
func (r *mongoBookingRepo) GetByRoomName(ctx context.Context, roomName string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"roomName": roomName}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus sets the lifecycle status and optionally the call end time.
func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, endedAt *time.Time) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if endedAt != nil {
		set["callEndedAt"] = *endedAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// StampHostJoin records the host's join time once; later joins keep the first stamp.
func (r *mongoBookingRepo) StampHostJoin(ctx context.Context, id string, joinedAt time.Time) error {
	filter := bson.M{"id": id, "hostJoinedAt": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"hostJoinedAt": joinedAt,
		"status":       models.BookingStatusInProgress,
		"updatedAt":    time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return err
	}
	// Zero matches means either an unknown booking or an already stamped
	// join; the caller has already resolved the booking, so both are no-ops.
	return nil
}

// StampCallEnd records the host's leave time and the actual talked minutes.
func (r *mongoBookingRepo) StampCallEnd(ctx context.Context, id string, endedAt time.Time, actualMinutes int) error {
	update := bson.M{"$set": bson.M{
		"callEndedAt":           endedAt,
		"actualDurationMinutes": actualMinutes,
		"updatedAt":             time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

package bookingRepo

import (
	"context"
	"errors"
	"time"

	"talkbid/database"
	"talkbid/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no booking matches the query.
var ErrNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(ctx context.Context, booking models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByRoomName(ctx context.Context, roomName string) (*models.Booking, error)
	// UpdateStatus sets the lifecycle status and, when endedAt is non-nil,
	// stamps callEndedAt. Settlement executor only.
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus, endedAt *time.Time) error
	// StampHostJoin records the host's client-reported join time and moves
	// the booking into in_progress. First write wins.
	StampHostJoin(ctx context.Context, id string, joinedAt time.Time) error
	// StampCallEnd records the host's client-reported leave time and the
	// actual talked duration for the degraded decision path.
	StampCallEnd(ctx context.Context, id string, endedAt time.Time, actualMinutes int) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("talkbid")
	repo := &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(err)
	}
	return repo
}

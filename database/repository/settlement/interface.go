package settlementRepo

import (
	"context"
	"errors"

	"talkbid/database"
	"talkbid/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no settlement record matches the query.
	ErrNotFound = errors.New("settlement record not found")
	// ErrAlreadyExists is returned when an insert loses the uniqueness race
	// on bookingId or chargeId. Callers fall back to reading the winner's row.
	ErrAlreadyExists = errors.New("settlement record already exists")
)

type SettlementRepository interface {
	// Create inserts the record. The store enforces at most one record per
	// booking and per charge; a duplicate insert returns ErrAlreadyExists.
	Create(ctx context.Context, record models.SettlementRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.SettlementRecord, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.SettlementRecord, error)
	// ClaimPayoutRef atomically sets the payout reference if and only if it
	// is still unset. Returns false when another writer already claimed it.
	ClaimPayoutRef(ctx context.Context, id string, payoutRef string) (bool, error)
}

type mongoSettlementRepo struct {
	coll *mongo.Collection
}

// NewMongoSettlementRepo returns a SettlementRepository backed by MongoDB.
func NewMongoSettlementRepo() SettlementRepository {
	db := database.MongoClient.Database("talkbid")
	repo := &mongoSettlementRepo{
		coll: db.Collection("settlement_records"),
	}
	if err := repo.ensureIndexes(); err != nil {
		panic(err)
	}
	return repo
}

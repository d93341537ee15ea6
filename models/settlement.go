// File: models/settlement.go
package models

import "time"

// SettlementStatus is the state of a finalized payment transaction.
type SettlementStatus string

const (
	SettlementStatusCaptured SettlementStatus = "captured" // charge collected, payout outstanding
	SettlementStatusPaidOut  SettlementStatus = "paid_out" // host share transferred (or implicit via auto-split)
)

// AutoSplitPayoutRef is the sentinel payout reference written when the gateway
// charge routes the host's share automatically at capture time. A record
// carrying it must never receive a separate transfer.
const AutoSplitPayoutRef = "auto_split"

// SettlementRecord is the single finalized transaction for a booking.
// At most one exists per booking; its existence is the idempotency guard for
// capture, and a non-empty PayoutRef is the idempotency guard for payout.
// PayoutRef is the only field mutated after creation.
type SettlementRecord struct {
	ID          string           `bson:"id" json:"id"`
	BookingID   string           `bson:"bookingId" json:"bookingId"`
	ChargeID    string           `bson:"chargeId" json:"chargeId"`
	GrossCents  int64            `bson:"grossCents" json:"grossCents"` // equals the booking's winning bid
	FeeCents    int64            `bson:"feeCents" json:"feeCents"`
	PayoutCents int64            `bson:"payoutCents" json:"payoutCents"`
	Currency    string           `bson:"currency" json:"currency"`
	PayoutRef   string           `bson:"payoutRef,omitempty" json:"payoutRef,omitempty"`
	Status      SettlementStatus `bson:"status" json:"status"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// File: models/booking.go
package models

import "time"

// BookingStatus is the lifecycle state of a purchased talk slot.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusReady      BookingStatus = "ready"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusNoShow     BookingStatus = "no_show"
)

// Booking is a won auction for a scheduled one-to-one video talk.
// AmountCents and AuthorizationID are set when the auction concludes and are
// immutable after creation; status and the degraded-mode timestamps below are
// written only by the settlement executor and the call join/leave handlers.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	RoomName        string        `bson:"roomName" json:"roomName"` // video provider room, maps webhook deliveries back to this booking
	BuyerID         string        `bson:"buyerId" json:"buyerId"`
	HostID          string        `bson:"hostId" json:"hostId"`
	ScheduledStart  time.Time     `bson:"scheduledStart" json:"scheduledStart"`
	DurationMinutes int           `bson:"durationMinutes" json:"durationMinutes"`
	AmountCents     int64         `bson:"amountCents" json:"amountCents"` // winning bid, minor currency units
	Currency        string        `bson:"currency" json:"currency"`
	AuthorizationID string        `bson:"authorizationId" json:"authorizationId"` // gateway hold on the winning bid
	Status          BookingStatus `bson:"status" json:"status"`

	// Degraded-mode timestamps, client-reported. Used by the completion
	// decision only when the provider never delivered webhook events.
	HostJoinedAt          *time.Time `bson:"hostJoinedAt,omitempty" json:"hostJoinedAt,omitempty"`
	CallEndedAt           *time.Time `bson:"callEndedAt,omitempty" json:"callEndedAt,omitempty"`
	ActualDurationMinutes int        `bson:"actualDurationMinutes,omitempty" json:"actualDurationMinutes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ScheduledEnd is the contractual end of the talk window.
func (b Booking) ScheduledEnd() time.Time {
	return b.ScheduledStart.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// File: models/call_event.go
package models

import "time"

// CallEventType is the normalized lifecycle event type from the video provider.
type CallEventType string

const (
	CallEventParticipantJoined CallEventType = "participant.joined"
	CallEventParticipantLeft   CallEventType = "participant.left"
	CallEventMeetingEnded      CallEventType = "meeting.ended"
)

// RoomEndReasonDuration means the provider itself timed the room out at its
// scheduled expiry. Any other reason is a manual or abnormal end.
const RoomEndReasonDuration = "duration"

// CallEvent is one append-only log entry of a booking's call lifecycle.
// Rows are never mutated or removed after insert.
type CallEvent struct {
	ID            string        `bson:"id" json:"id"`
	BookingID     string        `bson:"bookingId" json:"bookingId"`
	Type          CallEventType `bson:"type" json:"type"`
	ParticipantID string        `bson:"participantId,omitempty" json:"participantId,omitempty"`
	RoomEndReason string        `bson:"roomEndReason,omitempty" json:"roomEndReason,omitempty"` // terminal events only
	EventAt       time.Time     `bson:"eventAt" json:"eventAt"`                                 // provider-supplied occurrence time
	ReceivedAt    time.Time     `bson:"receivedAt" json:"receivedAt"`                           // our ingestion time
}

// Terminal reports whether the event signals the call room has ended.
func (e CallEvent) Terminal() bool {
	return e.Type == CallEventMeetingEnded
}

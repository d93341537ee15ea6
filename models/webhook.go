// File: models/webhook.go
package models

import "time"

// VideoWebhookPayload is one delivery from the video provider's webhook.
// RoomName resolves the booking via the mapping established at room creation.
// Reason is populated only on meeting.ended deliveries; "duration" means the
// room expired naturally at its scheduled end.
type VideoWebhookPayload struct {
	Type          string `json:"type" binding:"required"`
	RoomName      string `json:"roomName" binding:"required"`
	ParticipantID string `json:"participantId,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Timestamp     int64  `json:"timestamp" binding:"required"` // unix seconds, provider clock
}

// EventTime converts the provider timestamp to UTC.
func (p VideoWebhookPayload) EventTime() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// Package ingestion normalizes video provider webhook deliveries into the
// append-only call event log and hands terminal events off to the settlement
// queue. It never deduplicates deliveries; duplicate terminal events are
// harmless because the settlement executor is idempotent.
package ingestion

import (
	"context"
	"fmt"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	eventRepo "talkbid/database/repository/callevent"
	"talkbid/models"

	"go.uber.org/zap"
)

// SettlementEnqueuer hands a booking to the settlement worker.
type SettlementEnqueuer interface {
	EnqueueSettlement(ctx context.Context, bookingID string) error
}

type Service struct {
	logger   *zap.Logger
	bookings bookingRepo.BookingRepository
	events   eventRepo.CallEventRepository
	queue    SettlementEnqueuer
}

// NewService wires the ingestion service.
func NewService(
	logger *zap.Logger,
	bookings bookingRepo.BookingRepository,
	events eventRepo.CallEventRepository,
	queue SettlementEnqueuer,
) *Service {
	return &Service{
		logger:   logger,
		bookings: bookings,
		events:   events,
		queue:    queue,
	}
}

// Ingest normalizes one provider delivery, appends exactly one call event,
// and enqueues a settlement run when the event is terminal. An enqueue
// failure does not fail ingestion; the run can be re-triggered manually and
// the executor tolerates duplicates.
func (s *Service) Ingest(ctx context.Context, payload models.VideoWebhookPayload) (*models.CallEvent, error) {
	eventType, err := normalizeEventType(payload.Type)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByRoomName(ctx, payload.RoomName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve booking for room %q: %w", payload.RoomName, err)
	}

	event := models.CallEvent{
		BookingID:     booking.ID,
		Type:          eventType,
		ParticipantID: payload.ParticipantID,
		EventAt:       payload.EventTime(),
		ReceivedAt:    time.Now(),
	}
	if event.Terminal() {
		event.RoomEndReason = payload.Reason
	}

	if _, err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append call event for booking %s: %w", booking.ID, err)
	}

	if event.Terminal() {
		if err := s.queue.EnqueueSettlement(ctx, booking.ID); err != nil {
			s.logger.Error("failed to enqueue settlement run",
				zap.String("bookingId", booking.ID),
				zap.Error(err),
			)
		}
	}

	return &event, nil
}

// normalizeEventType maps provider event names onto the internal set. The
// provider has renamed terminal events across API versions, so both spellings
// are accepted.
func normalizeEventType(raw string) (models.CallEventType, error) {
	switch raw {
	case "participant.joined":
		return models.CallEventParticipantJoined, nil
	case "participant.left":
		return models.CallEventParticipantLeft, nil
	case "meeting.ended", "room.ended":
		return models.CallEventMeetingEnded, nil
	default:
		return "", fmt.Errorf("unknown video event type %q", raw)
	}
}

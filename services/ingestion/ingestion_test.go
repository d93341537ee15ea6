package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	"talkbid/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubBookingRepo struct {
	booking models.Booking
}

func (r *stubBookingRepo) Create(ctx context.Context, booking models.Booking) (string, error) {
	return booking.ID, nil
}

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if id != r.booking.ID {
		return nil, bookingRepo.ErrNotFound
	}
	b := r.booking
	return &b, nil
}

func (r *stubBookingRepo) GetByRoomName(ctx context.Context, roomName string) (*models.Booking, error) {
	if roomName != r.booking.RoomName {
		return nil, bookingRepo.ErrNotFound
	}
	b := r.booking
	return &b, nil
}

func (r *stubBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, endedAt *time.Time) error {
	return nil
}

func (r *stubBookingRepo) StampHostJoin(ctx context.Context, id string, joinedAt time.Time) error {
	return nil
}

func (r *stubBookingRepo) StampCallEnd(ctx context.Context, id string, endedAt time.Time, actualMinutes int) error {
	return nil
}

type stubEventRepo struct {
	mu       sync.Mutex
	appended []models.CallEvent
}

func (r *stubEventRepo) Append(ctx context.Context, event models.CallEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	r.appended = append(r.appended, event)
	return event.ID, nil
}

func (r *stubEventRepo) ListByBookingID(ctx context.Context, bookingID string) ([]models.CallEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.CallEvent(nil), r.appended...), nil
}

type stubEnqueuer struct {
	mu        sync.Mutex
	enqueued  []string
	returnErr error
}

func (q *stubEnqueuer) EnqueueSettlement(ctx context.Context, bookingID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.returnErr != nil {
		return q.returnErr
	}
	q.enqueued = append(q.enqueued, bookingID)
	return nil
}

func ingestFixture() (*Service, *stubEventRepo, *stubEnqueuer) {
	bookings := &stubBookingRepo{booking: models.Booking{
		ID:       "bk-1",
		RoomName: "room-1",
		HostID:   "host-1",
	}}
	events := &stubEventRepo{}
	queue := &stubEnqueuer{}
	return NewService(zap.NewNop(), bookings, events, queue), events, queue
}

func TestIngestAppendsNormalizedEvent(t *testing.T) {
	svc, events, queue := ingestFixture()

	event, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:          "participant.joined",
		RoomName:      "room-1",
		ParticipantID: "host-1",
		Timestamp:     1749567600,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(events.appended) != 1 {
		t.Fatalf("appended %d events, want exactly 1", len(events.appended))
	}
	got := events.appended[0]
	if got.BookingID != "bk-1" || got.Type != models.CallEventParticipantJoined {
		t.Errorf("appended event = %+v", got)
	}
	if !got.EventAt.Equal(time.Unix(1749567600, 0).UTC()) {
		t.Errorf("eventAt = %v, want provider timestamp", got.EventAt)
	}
	if event.RoomEndReason != "" {
		t.Errorf("non-terminal event carries end reason %q", event.RoomEndReason)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("non-terminal event enqueued a settlement run")
	}
}

func TestIngestTerminalEventEnqueuesSettlement(t *testing.T) {
	svc, events, queue := ingestFixture()

	event, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:      "meeting.ended",
		RoomName:  "room-1",
		Reason:    "duration",
		Timestamp: 1749571200,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if event.RoomEndReason != models.RoomEndReasonDuration {
		t.Errorf("end reason = %q, want duration", event.RoomEndReason)
	}
	if len(events.appended) != 1 {
		t.Fatalf("appended %d events, want 1", len(events.appended))
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != "bk-1" {
		t.Fatalf("enqueued = %v, want one settlement run for bk-1", queue.enqueued)
	}
}

func TestIngestAcceptsLegacyTerminalName(t *testing.T) {
	svc, _, queue := ingestFixture()

	event, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:      "room.ended",
		RoomName:  "room-1",
		Reason:    "manual",
		Timestamp: 1749571200,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if event.Type != models.CallEventMeetingEnded {
		t.Errorf("type = %s, want meeting.ended", event.Type)
	}
	if len(queue.enqueued) != 1 {
		t.Errorf("terminal event did not enqueue a settlement run")
	}
}

func TestIngestEnqueueFailureDoesNotFailIngestion(t *testing.T) {
	svc, events, queue := ingestFixture()
	queue.returnErr = errors.New("redis down")

	_, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:      "meeting.ended",
		RoomName:  "room-1",
		Reason:    "duration",
		Timestamp: 1749571200,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v, enqueue failure must not fail ingestion", err)
	}
	if len(events.appended) != 1 {
		t.Errorf("event not appended despite enqueue failure")
	}
}

func TestIngestRejectsUnknownEventType(t *testing.T) {
	svc, events, _ := ingestFixture()

	_, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:      "recording.started",
		RoomName:  "room-1",
		Timestamp: 1749567600,
	})
	if err == nil {
		t.Fatal("Ingest() accepted an unknown event type")
	}
	if len(events.appended) != 0 {
		t.Errorf("unknown event type still appended to the log")
	}
}

func TestIngestUnknownRoomFails(t *testing.T) {
	svc, events, _ := ingestFixture()

	_, err := svc.Ingest(context.Background(), models.VideoWebhookPayload{
		Type:      "participant.joined",
		RoomName:  "room-unmapped",
		Timestamp: 1749567600,
	})
	if !errors.Is(err, bookingRepo.ErrNotFound) {
		t.Fatalf("Ingest() error = %v, want booking not found", err)
	}
	if len(events.appended) != 0 {
		t.Errorf("event appended for an unmapped room")
	}
}

package settlement

import (
	"context"
	"sync"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	hostRepo "talkbid/database/repository/host"
	settlementRepo "talkbid/database/repository/settlement"
	"talkbid/models"

	"github.com/google/uuid"
)

// fakeGateway counts every money movement so tests can assert the
// at-most-once properties.
type fakeGateway struct {
	mu sync.Mutex

	state     AuthorizationState
	chargeID  string
	autoSplit bool

	cancelErr   error
	captureErr  error
	transferErr error

	transfers map[string]string // idempotency key -> transfer id

	retrieveCalls int
	captureCalls  int
	cancelCalls   int
	transferCalls int
}

func newFakeGateway(state AuthorizationState) *fakeGateway {
	return &fakeGateway{state: state, transfers: make(map[string]string)}
}

func (g *fakeGateway) RetrieveAuthorization(ctx context.Context, authorizationID string) (*Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieveCalls++
	return &Authorization{State: g.state, ChargeID: g.chargeID, AutoSplit: g.autoSplit}, nil
}

func (g *fakeGateway) Capture(ctx context.Context, authorizationID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captureCalls++
	if g.captureErr != nil {
		return "", g.captureErr
	}
	g.state = AuthStateCaptured
	g.chargeID = "ch_" + authorizationID
	return g.chargeID, nil
}

func (g *fakeGateway) Cancel(ctx context.Context, authorizationID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls++
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.state = AuthStateCanceled
	return nil
}

func (g *fakeGateway) Transfer(ctx context.Context, amountCents int64, currency, payeeAccountID, transferGroup, idempotencyKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transferCalls++
	if g.transferErr != nil {
		return "", g.transferErr
	}
	// Mirror the gateway's idempotency-key semantics: a repeated key
	// resolves to the transfer the first call created.
	if id, ok := g.transfers[idempotencyKey]; ok {
		return id, nil
	}
	id := "tr_" + uuid.New().String()
	g.transfers[idempotencyKey] = id
	return id, nil
}

// uniqueTransfers is the number of distinct transfers actually created.
func (g *fakeGateway) uniqueTransfers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transfers)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newFakeBookingRepo(bookings ...models.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[string]models.Booking)}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking models.Booking) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	r.bookings[booking.ID] = booking
	return booking.ID, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) GetByRoomName(ctx context.Context, roomName string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.RoomName == roomName {
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus, endedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.Status = status
	if endedAt != nil {
		b.CallEndedAt = endedAt
	}
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) StampHostJoin(ctx context.Context, id string, joinedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.HostJoinedAt != nil {
		return nil
	}
	b.HostJoinedAt = &joinedAt
	b.Status = models.BookingStatusInProgress
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) StampCallEnd(ctx context.Context, id string, endedAt time.Time, actualMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.CallEndedAt = &endedAt
	b.ActualDurationMinutes = actualMinutes
	r.bookings[id] = b
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.CallEvent
}

func newFakeEventRepo(events ...models.CallEvent) *fakeEventRepo {
	return &fakeEventRepo{events: events}
}

func (r *fakeEventRepo) Append(ctx context.Context, event models.CallEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	r.events = append(r.events, event)
	return event.ID, nil
}

func (r *fakeEventRepo) ListByBookingID(ctx context.Context, bookingID string) ([]models.CallEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CallEvent
	for _, ev := range r.events {
		if ev.BookingID == bookingID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// fakeSettlementRepo enforces the same uniqueness constraints as the Mongo
// indexes so racing executors behave like they would against the real store.
type fakeSettlementRepo struct {
	mu      sync.Mutex
	records map[string]models.SettlementRecord // by id
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{records: make(map[string]models.SettlementRecord)}
}

func (r *fakeSettlementRepo) Create(ctx context.Context, record models.SettlementRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.BookingID == record.BookingID || existing.ChargeID == record.ChargeID {
			return "", settlementRepo.ErrAlreadyExists
		}
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	r.records[record.ID] = record
	return record.ID, nil
}

func (r *fakeSettlementRepo) GetByID(ctx context.Context, id string) (*models.SettlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, settlementRepo.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeSettlementRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.SettlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.BookingID == bookingID {
			return &rec, nil
		}
	}
	return nil, settlementRepo.ErrNotFound
}

func (r *fakeSettlementRepo) ClaimPayoutRef(ctx context.Context, id string, payoutRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, settlementRepo.ErrNotFound
	}
	if rec.PayoutRef != "" {
		return false, nil
	}
	rec.PayoutRef = payoutRef
	rec.Status = models.SettlementStatusPaidOut
	r.records[id] = rec
	return true, nil
}

func (r *fakeSettlementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeHostRepo struct {
	mu    sync.Mutex
	hosts map[string]models.HostProfile
}

func newFakeHostRepo(hosts ...models.HostProfile) *fakeHostRepo {
	repo := &fakeHostRepo{hosts: make(map[string]models.HostProfile)}
	for _, h := range hosts {
		repo.hosts[h.ID] = h
	}
	return repo
}

func (r *fakeHostRepo) Upsert(ctx context.Context, host models.HostProfile) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if host.ID == "" {
		host.ID = uuid.New().String()
	}
	r.hosts[host.ID] = host
	return host.ID, nil
}

func (r *fakeHostRepo) GetByID(ctx context.Context, id string) (*models.HostProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hosts[id]
	if !ok {
		return nil, hostRepo.ErrNotFound
	}
	return &h, nil
}

package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	eventRepo "talkbid/database/repository/callevent"
	settlementRepo "talkbid/database/repository/settlement"
	"talkbid/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Executor finalizes a booking's held payment exactly once: it asks the
// completion decision for a verdict, captures or releases the hold, computes
// the fee split, persists the settlement record, and hands off to the payout
// executor. Safe to invoke any number of times for the same booking,
// including concurrently; every step re-resolves against the store's
// uniqueness guards rather than assuming a single invocation.
type Executor struct {
	logger      *zap.Logger
	gateway     PaymentGateway
	bookings    bookingRepo.BookingRepository
	events      eventRepo.CallEventRepository
	settlements settlementRepo.SettlementRepository
	payout      *PayoutExecutor
	feeRate     float64
}

// NewExecutor wires a settlement executor.
func NewExecutor(
	logger *zap.Logger,
	gateway PaymentGateway,
	bookings bookingRepo.BookingRepository,
	events eventRepo.CallEventRepository,
	settlements settlementRepo.SettlementRepository,
	payout *PayoutExecutor,
	feeRate float64,
) *Executor {
	return &Executor{
		logger:      logger,
		gateway:     gateway,
		bookings:    bookings,
		events:      events,
		settlements: settlements,
		payout:      payout,
		feeRate:     feeRate,
	}
}

// ComputePlatformFee returns the platform's cut of a gross amount, rounded to
// the nearest minor currency unit.
func ComputePlatformFee(grossCents int64, feeRate float64) int64 {
	return int64(math.Round(float64(grossCents) * feeRate))
}

// Settle finalizes the booking's payment. A returned error means the attempt
// is safe to retry; a Failed outcome with a nil error means the attempt must
// not be retried automatically and needs operator attention.
func (e *Executor) Settle(ctx context.Context, bookingID string) (*SettlementOutcome, error) {
	// Idempotency guard: an existing record means capture was already
	// decided; only the payout may still be outstanding.
	if record, err := e.settlements.GetByBookingID(ctx, bookingID); err == nil {
		return e.resumeFromRecord(ctx, record)
	} else if !errors.Is(err, settlementRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up settlement for booking %s: %w", bookingID, err)
	}

	booking, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	events, err := e.events.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event log for booking %s: %w", bookingID, err)
	}

	decision := Decide(*booking, events)
	e.logger.Info("completion decision",
		zap.String("bookingId", bookingID),
		zap.String("verdict", string(decision.Verdict)),
		zap.String("reason", string(decision.Reason)),
	)

	if decision.Verdict == VerdictRelease {
		return e.releaseHold(ctx, booking, decision)
	}
	return e.captureAndRecord(ctx, booking, decision)
}

// resumeFromRecord handles re-invocation after a prior attempt already
// created the settlement record.
func (e *Executor) resumeFromRecord(ctx context.Context, record *models.SettlementRecord) (*SettlementOutcome, error) {
	outcome := &SettlementOutcome{
		Status:       OutcomeSuccess,
		Reason:       ReasonAlreadySettled,
		BookingID:    record.BookingID,
		SettlementID: record.ID,
		ChargeID:     record.ChargeID,
	}
	if record.PayoutRef != "" {
		// Fully settled, including payout (or marked non-payable). No-op.
		return outcome, nil
	}
	// Capture succeeded previously but the payout never completed; pick up
	// from there.
	payout, err := e.payout.PayOut(ctx, record.ID)
	if err != nil {
		return outcome, err
	}
	outcome.Payout = payout
	return outcome, nil
}

// releaseHold voids the authorization without charging.
func (e *Executor) releaseHold(ctx context.Context, booking *models.Booking, decision Decision) (*SettlementOutcome, error) {
	err := e.gateway.Cancel(ctx, booking.AuthorizationID)
	if errors.Is(err, ErrAlreadyReleased) {
		e.logger.Info("authorization already released",
			zap.String("bookingId", booking.ID),
			zap.String("authorizationId", booking.AuthorizationID),
		)
	} else if err != nil {
		return nil, fmt.Errorf("failed to release authorization for booking %s: %w", booking.ID, err)
	}

	now := time.Now()
	if err := e.bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled, &now); err != nil {
		return nil, fmt.Errorf("failed to mark booking %s cancelled: %w", booking.ID, err)
	}

	return &SettlementOutcome{
		Status:    OutcomeSkipped,
		Reason:    string(decision.Reason),
		BookingID: booking.ID,
	}, nil
}

// captureAndRecord collects the held amount, persists the fee split, and
// triggers the payout. A payout failure never reverses the capture.
func (e *Executor) captureAndRecord(ctx context.Context, booking *models.Booking, decision Decision) (*SettlementOutcome, error) {
	auth, err := e.gateway.RetrieveAuthorization(ctx, booking.AuthorizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve authorization for booking %s: %w", booking.ID, err)
	}

	var chargeID string
	switch auth.State {
	case AuthStateCaptured:
		// A prior attempt already captured; reuse its charge.
		chargeID = auth.ChargeID
	case AuthStateCapturable:
		chargeID, err = e.gateway.Capture(ctx, booking.AuthorizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to capture authorization for booking %s: %w", booking.ID, err)
		}
	default:
		// Silently retrying a state mismatch risks masking a real billing
		// defect; surface it for an operator instead.
		e.logger.Error("authorization in unexpected state at capture time",
			zap.String("bookingId", booking.ID),
			zap.String("authorizationId", booking.AuthorizationID),
			zap.String("state", string(auth.State)),
		)
		return &SettlementOutcome{
			Status:    OutcomeFailed,
			Reason:    ReasonAuthStateMismatch,
			BookingID: booking.ID,
		}, nil
	}

	fee := ComputePlatformFee(booking.AmountCents, e.feeRate)
	record := models.SettlementRecord{
		ID:          uuid.New().String(),
		BookingID:   booking.ID,
		ChargeID:    chargeID,
		GrossCents:  booking.AmountCents,
		FeeCents:    fee,
		PayoutCents: booking.AmountCents - fee,
		Currency:    booking.Currency,
		Status:      models.SettlementStatusCaptured,
	}
	settlementID, err := e.settlements.Create(ctx, record)
	if errors.Is(err, settlementRepo.ErrAlreadyExists) {
		// A concurrent executor won the insert race; adopt its record.
		existing, getErr := e.settlements.GetByBookingID(ctx, booking.ID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load winning settlement for booking %s: %w", booking.ID, getErr)
		}
		return e.resumeFromRecord(ctx, existing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist settlement for booking %s: %w", booking.ID, err)
	}

	now := time.Now()
	if err := e.bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCompleted, &now); err != nil {
		e.logger.Error("failed to mark booking completed", zap.String("bookingId", booking.ID), zap.Error(err))
	}

	outcome := &SettlementOutcome{
		Status:       OutcomeSuccess,
		Reason:       string(decision.Reason),
		BookingID:    booking.ID,
		SettlementID: settlementID,
		ChargeID:     chargeID,
	}

	// Capture and payout are intentionally decoupled: a payout-side failure
	// surfaces as a retryable error while the charge stands.
	payout, err := e.payout.PayOut(ctx, settlementID)
	if err != nil {
		return outcome, err
	}
	outcome.Payout = payout
	return outcome, nil
}

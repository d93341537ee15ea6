package settlement

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "talkbid/database/repository/booking"
	hostRepo "talkbid/database/repository/host"
	settlementRepo "talkbid/database/repository/settlement"
	"talkbid/models"

	"go.uber.org/zap"
)

// PayoutExecutor transfers the host's share of a captured charge exactly
// once. The settlement record's payout reference is the idempotency guard: a
// non-empty value, including the auto-split sentinel, means the host has been
// paid (or never needs a separate transfer) and the gateway must not be
// contacted again.
type PayoutExecutor struct {
	logger      *zap.Logger
	gateway     PaymentGateway
	settlements settlementRepo.SettlementRepository
	bookings    bookingRepo.BookingRepository
	hosts       hostRepo.HostRepository
}

// NewPayoutExecutor wires a payout executor.
func NewPayoutExecutor(
	logger *zap.Logger,
	gateway PaymentGateway,
	settlements settlementRepo.SettlementRepository,
	bookings bookingRepo.BookingRepository,
	hosts hostRepo.HostRepository,
) *PayoutExecutor {
	return &PayoutExecutor{
		logger:      logger,
		gateway:     gateway,
		settlements: settlements,
		bookings:    bookings,
		hosts:       hosts,
	}
}

// PayOut pays the settlement's host share. A returned error is safe to retry;
// a Skipped outcome flags an operational gap for manual follow-up.
func (p *PayoutExecutor) PayOut(ctx context.Context, settlementID string) (*PayoutOutcome, error) {
	record, err := p.settlements.GetByID(ctx, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement %s: %w", settlementID, err)
	}
	if record.PayoutRef != "" {
		return &PayoutOutcome{
			Status:    OutcomeSuccess,
			Reason:    ReasonAlreadyPaidOut,
			PayoutRef: record.PayoutRef,
		}, nil
	}

	booking, err := p.bookings.GetByID(ctx, record.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s for payout: %w", record.BookingID, err)
	}

	// Auto-split charges already routed the host's share at capture time;
	// issuing a transfer on top would double-pay the host.
	auth, err := p.gateway.RetrieveAuthorization(ctx, booking.AuthorizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect charge for settlement %s: %w", settlementID, err)
	}
	if auth.AutoSplit {
		if _, err := p.settlements.ClaimPayoutRef(ctx, record.ID, models.AutoSplitPayoutRef); err != nil {
			return nil, fmt.Errorf("failed to mark settlement %s auto-split: %w", settlementID, err)
		}
		p.logger.Info("charge is auto-split, no separate transfer",
			zap.String("settlementId", record.ID),
			zap.String("bookingId", booking.ID),
		)
		return &PayoutOutcome{
			Status:    OutcomeSuccess,
			Reason:    ReasonAutoSplitCharge,
			PayoutRef: models.AutoSplitPayoutRef,
		}, nil
	}

	host, err := p.hosts.GetByID(ctx, booking.HostID)
	if err != nil && !errors.Is(err, hostRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to load host %s: %w", booking.HostID, err)
	}
	if host == nil || host.PayeeAccountID == "" {
		// Expected operational gap, not an error. Surfaced for manual
		// follow-up rather than retried blindly.
		p.logger.Warn("host has no payee account on file",
			zap.String("settlementId", record.ID),
			zap.String("hostId", booking.HostID),
		)
		return &PayoutOutcome{
			Status: OutcomeSkipped,
			Reason: ReasonPayeeMissing,
		}, nil
	}

	// Tag the transfer with the booking's grouping key so all money
	// movements for one talk are traceable together. The idempotency key is
	// derived from the settlement record, so racing payout attempts collapse
	// into a single transfer on the gateway side.
	transferGroup := "booking_" + booking.ID
	idempotencyKey := "payout_" + record.ID
	transferID, err := p.gateway.Transfer(ctx, record.PayoutCents, record.Currency, host.PayeeAccountID, transferGroup, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer payout for settlement %s: %w", settlementID, err)
	}

	claimed, err := p.settlements.ClaimPayoutRef(ctx, record.ID, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to persist payout ref for settlement %s: %w", settlementID, err)
	}
	if !claimed {
		// A concurrent payout won the claim; its reference stands.
		p.logger.Warn("payout ref already claimed by a concurrent attempt",
			zap.String("settlementId", record.ID),
			zap.String("transferId", transferID),
		)
	}

	p.logger.Info("host payout transferred",
		zap.String("settlementId", record.ID),
		zap.String("transferId", transferID),
		zap.Int64("amountCents", record.PayoutCents),
	)
	return &PayoutOutcome{
		Status:    OutcomeSuccess,
		Reason:    ReasonTransferred,
		PayoutRef: transferID,
	}, nil
}

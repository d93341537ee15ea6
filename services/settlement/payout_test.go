package settlement

import (
	"context"
	"testing"

	"talkbid/models"

	"go.uber.org/zap"
)

func payoutFixture(gateway *fakeGateway, hosts *fakeHostRepo) (*PayoutExecutor, *fakeSettlementRepo, string) {
	logger := zap.NewNop()
	booking := settledBooking()
	bookings := newFakeBookingRepo(booking)
	settlements := newFakeSettlementRepo()

	id, _ := settlements.Create(context.Background(), models.SettlementRecord{
		BookingID:   booking.ID,
		ChargeID:    "ch_1",
		GrossCents:  10000,
		FeeCents:    2000,
		PayoutCents: 8000,
		Currency:    "usd",
		Status:      models.SettlementStatusCaptured,
	})

	return NewPayoutExecutor(logger, gateway, settlements, bookings, hosts), settlements, id
}

func TestPayOutTransfersHostShare(t *testing.T) {
	gateway := newFakeGateway(AuthStateCaptured)
	hosts := newFakeHostRepo(models.HostProfile{ID: "host-1", PayeeAccountID: "acct_1"})
	executor, settlements, id := payoutFixture(gateway, hosts)

	outcome, err := executor.PayOut(context.Background(), id)
	if err != nil {
		t.Fatalf("PayOut() error = %v", err)
	}
	if outcome.Status != OutcomeSuccess || outcome.Reason != ReasonTransferred {
		t.Fatalf("PayOut() = %s/%s, want success/transferred", outcome.Status, outcome.Reason)
	}
	if gateway.transferCalls != 1 {
		t.Errorf("transfer calls = %d, want 1", gateway.transferCalls)
	}

	record, _ := settlements.GetByID(context.Background(), id)
	if record.PayoutRef != outcome.PayoutRef || record.PayoutRef == "" {
		t.Errorf("payout ref = %q, want persisted transfer id %q", record.PayoutRef, outcome.PayoutRef)
	}
	if record.Status != models.SettlementStatusPaidOut {
		t.Errorf("status = %s, want paid_out", record.Status)
	}
}

func TestPayOutIsIdempotent(t *testing.T) {
	gateway := newFakeGateway(AuthStateCaptured)
	hosts := newFakeHostRepo(models.HostProfile{ID: "host-1", PayeeAccountID: "acct_1"})
	executor, _, id := payoutFixture(gateway, hosts)

	ctx := context.Background()
	first, err := executor.PayOut(ctx, id)
	if err != nil {
		t.Fatalf("first PayOut() error = %v", err)
	}

	second, err := executor.PayOut(ctx, id)
	if err != nil {
		t.Fatalf("second PayOut() error = %v", err)
	}
	if second.Reason != ReasonAlreadyPaidOut {
		t.Fatalf("second PayOut() reason = %s, want already_paid_out", second.Reason)
	}
	if second.PayoutRef != first.PayoutRef {
		t.Errorf("second PayOut() ref = %q, want %q", second.PayoutRef, first.PayoutRef)
	}
	if gateway.transferCalls != 1 {
		t.Errorf("transfer calls = %d, want exactly 1", gateway.transferCalls)
	}
}

func TestPayOutAutoSplitNeverTransfers(t *testing.T) {
	gateway := newFakeGateway(AuthStateCaptured)
	gateway.autoSplit = true
	hosts := newFakeHostRepo(models.HostProfile{ID: "host-1", PayeeAccountID: "acct_1"})
	executor, settlements, id := payoutFixture(gateway, hosts)

	outcome, err := executor.PayOut(context.Background(), id)
	if err != nil {
		t.Fatalf("PayOut() error = %v", err)
	}
	if outcome.Status != OutcomeSuccess || outcome.Reason != ReasonAutoSplitCharge {
		t.Fatalf("PayOut() = %s/%s, want success/auto_split_charge", outcome.Status, outcome.Reason)
	}
	if gateway.transferCalls != 0 {
		t.Errorf("transfer calls = %d, want 0 for auto-split charge", gateway.transferCalls)
	}

	record, _ := settlements.GetByID(context.Background(), id)
	if record.PayoutRef != models.AutoSplitPayoutRef {
		t.Errorf("payout ref = %q, want sentinel %q", record.PayoutRef, models.AutoSplitPayoutRef)
	}
}

func TestPayOutSkipsWhenPayeeAccountMissing(t *testing.T) {
	gateway := newFakeGateway(AuthStateCaptured)
	hosts := newFakeHostRepo(models.HostProfile{ID: "host-1"}) // no payee account
	executor, settlements, id := payoutFixture(gateway, hosts)

	outcome, err := executor.PayOut(context.Background(), id)
	if err != nil {
		t.Fatalf("PayOut() error = %v", err)
	}
	if outcome.Status != OutcomeSkipped || outcome.Reason != ReasonPayeeMissing {
		t.Fatalf("PayOut() = %s/%s, want skipped/payee_account_missing", outcome.Status, outcome.Reason)
	}
	if gateway.transferCalls != 0 {
		t.Errorf("transfer calls = %d, want 0", gateway.transferCalls)
	}

	// The record stays claimable so a retry after the account is on file
	// can still pay out.
	record, _ := settlements.GetByID(context.Background(), id)
	if record.PayoutRef != "" {
		t.Errorf("payout ref = %q, want empty", record.PayoutRef)
	}
}

func TestPayOutUnknownHostSkips(t *testing.T) {
	gateway := newFakeGateway(AuthStateCaptured)
	executor, _, id := payoutFixture(gateway, newFakeHostRepo())

	outcome, err := executor.PayOut(context.Background(), id)
	if err != nil {
		t.Fatalf("PayOut() error = %v", err)
	}
	if outcome.Status != OutcomeSkipped || outcome.Reason != ReasonPayeeMissing {
		t.Fatalf("PayOut() = %s/%s, want skipped/payee_account_missing", outcome.Status, outcome.Reason)
	}
}

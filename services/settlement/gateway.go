package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// AuthorizationState is the gateway-side state of a payment hold.
type AuthorizationState string

const (
	AuthStateCapturable AuthorizationState = "capturable"
	AuthStateCaptured   AuthorizationState = "captured"
	AuthStateCanceled   AuthorizationState = "canceled"
	AuthStateOther      AuthorizationState = "other"
)

// ErrAlreadyReleased is returned by Cancel when the authorization was already
// released or expired. Callers treat it as success; the money was never going
// to move either way.
var ErrAlreadyReleased = errors.New("authorization already released")

// Authorization is the settlement-relevant view of a gateway hold.
type Authorization struct {
	State    AuthorizationState
	ChargeID string // set once captured
	// AutoSplit means the charge configuration routes the host's share
	// automatically at capture time; no separate transfer may be issued.
	AutoSplit bool
}

// PaymentGateway is the injected capability for moving money. Implementations
// must be safe for concurrent use.
type PaymentGateway interface {
	RetrieveAuthorization(ctx context.Context, authorizationID string) (*Authorization, error)
	Capture(ctx context.Context, authorizationID string) (chargeID string, err error)
	Cancel(ctx context.Context, authorizationID string) error
	// Transfer moves amountCents to the payee. idempotencyKey makes racing
	// duplicate calls resolve to the same single transfer on the gateway side.
	Transfer(ctx context.Context, amountCents int64, currency, payeeAccountID, transferGroup, idempotencyKey string) (transferID string, err error)
}

// StripeGateway implements PaymentGateway on a dedicated Stripe client rather
// than the package-global key, so tests can substitute a fake.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway around its own Stripe client.
func NewStripeGateway(apiKey string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) RetrieveAuthorization(ctx context.Context, authorizationID string) (*Authorization, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := g.api.PaymentIntents.Get(authorizationID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", authorizationID, err)
	}

	auth := &Authorization{
		State:     AuthStateOther,
		AutoSplit: intent.TransferData != nil && intent.TransferData.Destination != nil,
	}
	switch intent.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		auth.State = AuthStateCapturable
	case stripe.PaymentIntentStatusSucceeded:
		auth.State = AuthStateCaptured
	case stripe.PaymentIntentStatusCanceled:
		auth.State = AuthStateCanceled
	}
	if intent.LatestCharge != nil {
		auth.ChargeID = intent.LatestCharge.ID
	}
	return auth, nil
}

func (g *StripeGateway) Capture(ctx context.Context, authorizationID string) (string, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	intent, err := g.api.PaymentIntents.Capture(authorizationID, params)
	if err != nil {
		return "", fmt.Errorf("failed to capture payment intent %s: %w", authorizationID, err)
	}
	if intent.LatestCharge == nil {
		return "", fmt.Errorf("captured payment intent %s has no charge", authorizationID)
	}
	return intent.LatestCharge.ID, nil
}

func (g *StripeGateway) Cancel(ctx context.Context, authorizationID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	_, err := g.api.PaymentIntents.Cancel(authorizationID, params)
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
		// The hold is already canceled or has expired on Stripe's side.
		return ErrAlreadyReleased
	}
	return fmt.Errorf("failed to cancel payment intent %s: %w", authorizationID, err)
}

func (g *StripeGateway) Transfer(ctx context.Context, amountCents int64, currency, payeeAccountID, transferGroup, idempotencyKey string) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		Destination:   stripe.String(payeeAccountID),
		TransferGroup: stripe.String(transferGroup),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create transfer to %s: %w", payeeAccountID, err)
	}
	return tr.ID, nil
}

package settlement

// OutcomeStatus classifies how a settlement or payout attempt resolved.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome reasons beyond the decision engine's reason codes.
const (
	ReasonAlreadySettled    = "already_settled"
	ReasonAuthStateMismatch = "authorization_state_mismatch"
	ReasonAlreadyPaidOut    = "already_paid_out"
	ReasonAutoSplitCharge   = "auto_split_charge"
	ReasonPayeeMissing      = "payee_account_missing"
	ReasonTransferred       = "transferred"
)

// SettlementOutcome is the structured result of one Settle invocation.
type SettlementOutcome struct {
	Status       OutcomeStatus  `json:"status"`
	Reason       string         `json:"reason"`
	BookingID    string         `json:"bookingId"`
	SettlementID string         `json:"settlementId,omitempty"`
	ChargeID     string         `json:"chargeId,omitempty"`
	Payout       *PayoutOutcome `json:"payout,omitempty"`
}

// PayoutOutcome is the structured result of one PayOut invocation.
type PayoutOutcome struct {
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason"`
	PayoutRef string        `json:"payoutRef,omitempty"`
}

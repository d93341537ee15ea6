// File: models/host.go
package models

import "time"

// HostProfile carries the settlement-relevant slice of a host: where their
// share of a captured talk gets transferred. An empty PayeeAccountID is an
// expected operational gap, surfaced as a skipped payout for manual follow-up.
type HostProfile struct {
	ID             string    `bson:"id" json:"id"`
	DisplayName    string    `bson:"displayName" json:"displayName"`
	PayeeAccountID string    `bson:"payeeAccountId,omitempty" json:"payeeAccountId,omitempty"` // connected gateway account (acct_...)
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

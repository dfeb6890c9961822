package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the lifecycle position of a claim.
type ClaimStatus string

// Claim statuses. ClaimCancelled is never stored: cancelling deletes the row.
const (
	ClaimSent          ClaimStatus = "sent"
	ClaimRedeemed      ClaimStatus = "redeemed"
	ClaimSavedToCredit ClaimStatus = "saved_to_credit"
	ClaimCancelled     ClaimStatus = "cancelled"
)

// claimPending is the legacy spelling of ClaimSent. It is accepted on read
// and never written.
const claimPending = "pending"

// ParseClaimStatus maps a stored status to its canonical value.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch s {
	case string(ClaimSent), claimPending:
		return ClaimSent, nil
	case string(ClaimRedeemed):
		return ClaimRedeemed, nil
	case string(ClaimSavedToCredit):
		return ClaimSavedToCredit, nil
	case string(ClaimCancelled):
		return ClaimCancelled, nil
	}
	return "", fmt.Errorf("unknown claim status %q", s)
}

// OpenStatuses lists the stored values a claim awaiting resolution may have.
func OpenStatuses() []string {
	return []string{string(ClaimSent), claimPending}
}

// Open reports whether the claim can still be resolved or cancelled.
func (s ClaimStatus) Open() bool {
	return s == ClaimSent
}

// Terminal reports whether s is absorbing.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimRedeemed || s == ClaimSavedToCredit || s == ClaimCancelled
}

// CanTransition reports whether a claim in status s may move to next.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	return s.Open() && next.Terminal()
}

// Claim is one gift transfer from a sender to a (possibly unknown) receiver.
type Claim struct {
	TransactionID string          `json:"transaction_id"`
	GiftTypeID    int64           `json:"gift_type_id"`
	SenderID      int64           `json:"sender_id"`
	ReceiverEmail string          `json:"receiver_email,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	HasUnitPrice  bool            `json:"-"` // false for legacy rows without a snapshot
	Message       string          `json:"message,omitempty"`
	Status        ClaimStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ClaimedAt     *time.Time      `json:"claimed_at,omitempty"`
	ClaimIP       string          `json:"-"`

	// Joined fields (not always populated).
	GiftName   string `json:"gift_name,omitempty"`
	GiftEmoji  string `json:"gift_emoji,omitempty"`
	SenderName string `json:"sender_name,omitempty"`
}

// Value is the monetary worth of the claim at its snapshotted unit price.
func (c *Claim) Value() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// ClaimStats summarizes a user's gifting activity.
type ClaimStats struct {
	Held     int `json:"held"`
	Sent     int `json:"sent"`
	Resolved int `json:"resolved"`
	Received int `json:"received"`
}

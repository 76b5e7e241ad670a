package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DealStatus represents the lifecycle state of a deal
type DealStatus string

const (
	DealStatusProposed       DealStatus = "proposed"
	DealStatusAccepted       DealStatus = "accepted"
	DealStatusPaymentClaimed DealStatus = "payment_claimed"
	DealStatusVerified       DealStatus = "verified"
	DealStatusCompleted      DealStatus = "completed"
	DealStatusDeclined       DealStatus = "declined"
	DealStatusExpired        DealStatus = "expired"
	DealStatusCancelled      DealStatus = "cancelled"
	DealStatusFailed         DealStatus = "failed"
)

// dealTransitions is the complete forward transition table. Absent states
// are terminal; anything not listed here is rejected.
var dealTransitions = map[DealStatus][]DealStatus{
	DealStatusProposed:       {DealStatusAccepted, DealStatusDeclined, DealStatusExpired, DealStatusCancelled, DealStatusFailed},
	DealStatusAccepted:       {DealStatusPaymentClaimed, DealStatusExpired, DealStatusCancelled, DealStatusFailed},
	DealStatusPaymentClaimed: {DealStatusVerified, DealStatusFailed},
	DealStatusVerified:       {DealStatusCompleted, DealStatusFailed},
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s DealStatus) CanTransitionTo(next DealStatus) bool {
	for _, allowed := range dealTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is absorbing
func (s DealStatus) IsTerminal() bool {
	return len(dealTransitions[s]) == 0
}

// String returns the string representation of the status
func (s DealStatus) String() string {
	return string(s)
}

// AssetKind distinguishes what each side of a deal puts up
type AssetKind string

const (
	AssetKindTON  AssetKind = "ton"
	AssetKindGift AssetKind = "gift"
)

// DealSide describes one party's contribution to a deal
type DealSide struct {
	Kind       AssetKind `db:"kind"`
	AmountNano int64     `db:"amount_nano"` // set when Kind is ton
	GiftRef    string    `db:"gift_ref"`    // set when Kind is gift
	ValueNano  int64     `db:"value_nano"`  // canonical value in nanotons
}

// Deal represents a peer-to-peer escrowed trade
type Deal struct {
	ID                    string     `db:"id"`
	Status                DealStatus `db:"status"`
	UserID                int64      `db:"user_id"`
	ChatID                int64      `db:"chat_id"`
	UserGives             DealSide   `db:"-"` // flattened into user_gives_* columns
	AgentGives            DealSide   `db:"-"` // flattened into agent_gives_* columns
	UserPaymentVerifiedAt *time.Time `db:"user_payment_verified_at"`
	UserPaymentTxHash     *string    `db:"user_payment_tx_hash"`
	UserWalletAddress     *string    `db:"user_wallet_address"` // sender of the verified payment

	AgentSentAt           *time.Time `db:"agent_sent_at"`
	AgentSentTxHash       *string    `db:"agent_sent_tx_hash"`
	ProfitEstimateNano    int64      `db:"profit_estimate_nano"`
	CreatedAt             time.Time  `db:"created_at"`
	ExpiresAt             time.Time  `db:"expires_at"`
	CompletedAt           *time.Time `db:"completed_at"`
	InlineMessageRef      *string    `db:"inline_message_ref"`
	Notes                 *string    `db:"notes"`
}

// NewDealID generates an opaque deal identifier short enough to be typed
// into a transfer memo.
func NewDealID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "deal_" + raw[:8]
}

// IsExpired reports whether the deal's payment window has passed
func (d *Deal) IsExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

// IsOpen reports whether the deal can still be expired by the sweep
func (d *Deal) IsOpen() bool {
	return d.Status == DealStatusProposed || d.Status == DealStatusAccepted
}

// IsTerminal reports whether no further transition is possible
func (d *Deal) IsTerminal() bool {
	return d.Status.IsTerminal()
}

// AgentHasSent reports whether the agent's side has already gone out
func (d *Deal) AgentHasSent() bool {
	return d.AgentSentAt != nil
}

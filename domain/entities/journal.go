package entities

import "time"

// JournalKind categorizes what produced a journal entry
type JournalKind string

const (
	JournalKindTrade JournalKind = "trade"
	JournalKindWager JournalKind = "wager"
)

// JournalOutcome is the settlement result from the house perspective
type JournalOutcome string

const (
	JournalOutcomePending   JournalOutcome = "pending"
	JournalOutcomeProfit    JournalOutcome = "profit"
	JournalOutcomeLoss      JournalOutcome = "loss"
	JournalOutcomeNeutral   JournalOutcome = "neutral"
	JournalOutcomeCancelled JournalOutcome = "cancelled"
)

// JournalEntry is an append-only audit row. It is created pending when a
// settlement starts and closed exactly once with a terminal outcome.
type JournalEntry struct {
	ID             int64          `db:"id"`
	Timestamp      time.Time      `db:"ts"`
	Kind           JournalKind    `db:"kind"`
	Action         string         `db:"action"`
	AssetFrom      string         `db:"asset_from"`
	AssetTo        string         `db:"asset_to"`
	AmountFromNano int64          `db:"amount_from_nano"`
	AmountToNano   int64          `db:"amount_to_nano"`
	Outcome        JournalOutcome `db:"outcome"`
	PnLNano        int64          `db:"pnl_nano"`
	TxHash         *string        `db:"tx_hash"`
	PayoutRef      *string        `db:"payout_ref"`
	ToolUsed       string         `db:"tool_used"`
	ChatID         int64          `db:"chat_id"`
	UserID         int64          `db:"user_id"`
	ClosedAt       *time.Time     `db:"closed_at"`
}

// IsClosed reports whether the entry has reached a terminal outcome
func (e *JournalEntry) IsClosed() bool {
	return e.Outcome != JournalOutcomePending
}

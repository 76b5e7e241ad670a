package entities

import "time"

// UsedTransaction is an anti-replay record: a chain transaction hash that
// has already been credited to a settlement. A hash is inserted at most
// once; the uniqueness constraint is the claim.
type UsedTransaction struct {
	TxHash         string    `db:"tx_hash"`
	UserID         int64     `db:"user_id"`
	AmountNano     int64     `db:"amount_nano"`
	SettlementKind string    `db:"settlement_kind"` // e.g. "casino_slot" or a deal id
	UsedAt         time.Time `db:"used_at"`
}

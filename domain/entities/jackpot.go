package entities

import "time"

// Jackpot is the singleton pooled jackpot. A fixed fraction of every wager
// accrues here; hitting the jackpot value pays the pool out and resets it.
type Jackpot struct {
	AmountNano   int64      `db:"amount_nano"`
	LastWinnerID *int64     `db:"last_winner_id"`
	LastWonAt    *time.Time `db:"last_won_at"`
}

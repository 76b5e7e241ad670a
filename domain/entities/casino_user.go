package entities

import "time"

// CasinoUser aggregates per-player casino activity
type CasinoUser struct {
	UserID           int64      `db:"user_id"`
	WalletAddress    string     `db:"wallet_address"` // last observed sender
	TotalBets        int64      `db:"total_bets"`
	TotalWageredNano int64      `db:"total_wagered_nano"`
	TotalWins        int64      `db:"total_wins"`
	TotalLosses      int64      `db:"total_losses"`
	TotalWonNano     int64      `db:"total_won_nano"`
	LastBetAt        *time.Time `db:"last_bet_at"`
}

// NetNano returns the player's lifetime net result (their perspective)
func (u *CasinoUser) NetNano() int64 {
	return u.TotalWonNano - u.TotalWageredNano
}

// WinRate returns the fraction of settled bets the player won
func (u *CasinoUser) WinRate() float64 {
	settled := u.TotalWins + u.TotalLosses
	if settled == 0 {
		return 0
	}
	return float64(u.TotalWins) / float64(settled)
}

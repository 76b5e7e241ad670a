package entities

import "time"

// CasinoCooldown tracks the last allowed action per user for rate limiting
type CasinoCooldown struct {
	UserID       int64     `db:"user_id"`
	LastActionAt time.Time `db:"last_action_at"`
}

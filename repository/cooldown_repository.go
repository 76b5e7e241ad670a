package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
)

// CooldownRepository implements per-user rate limiting for casino actions
type CooldownRepository struct {
	q Queryable
}

// NewCooldownRepository creates a new cooldown repository. Like claims,
// cooldowns run on the pool so a set cooldown survives a settlement abort.
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

// CheckAndSet atomically stamps the user's last action time if at least
// window has passed since their previous one. A single conditional upsert
// keeps concurrent callers honest: exactly one of two simultaneous
// requests inside the window gets through.
func (r *CooldownRepository) CheckAndSet(ctx context.Context, userID int64, window time.Duration, now time.Time) (bool, error) {
	query := `
		INSERT INTO casino_cooldowns (user_id, last_action_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_action_at = EXCLUDED.last_action_at
		WHERE casino_cooldowns.last_action_at <= $3
	`

	cutoff := now.Add(-window)
	result, err := r.q.Exec(ctx, query, userID, toUnix(now), toUnix(cutoff))
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown for user %d: %w", userID, err)
	}

	return result.RowsAffected() == 1, nil
}

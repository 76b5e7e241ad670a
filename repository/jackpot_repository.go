package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
	"dealer/domain/entities"
)

// JackpotRepository manages the singleton pooled jackpot row
type JackpotRepository struct {
	q Queryable
}

// NewJackpotRepository creates a new jackpot repository
func NewJackpotRepository(db *database.DB) *JackpotRepository {
	return &JackpotRepository{q: db.Pool}
}

func newJackpotRepositoryWithTx(tx Queryable) *JackpotRepository {
	return &JackpotRepository{q: tx}
}

// Get returns the current jackpot state. The row is seeded by migration,
// so a missing row is a database error, not a business condition.
func (r *JackpotRepository) Get(ctx context.Context) (*entities.Jackpot, error) {
	query := `
		SELECT amount_nano, last_winner_id, last_won_at
		FROM casino_jackpot
		WHERE id = 1
	`

	var jackpot entities.Jackpot
	var lastWonAt *int64
	err := r.q.QueryRow(ctx, query).Scan(&jackpot.AmountNano, &jackpot.LastWinnerID, &lastWonAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get jackpot: %w", err)
	}

	jackpot.LastWonAt = fromUnixPtr(lastWonAt)
	return &jackpot, nil
}

// Accrue adds amountNano to the pool
func (r *JackpotRepository) Accrue(ctx context.Context, amountNano int64) error {
	query := `UPDATE casino_jackpot SET amount_nano = amount_nano + $1 WHERE id = 1`

	_, err := r.q.Exec(ctx, query, amountNano)
	if err != nil {
		return fmt.Errorf("failed to accrue jackpot: %w", err)
	}
	return nil
}

// Award resets the pool to zero, stamps the winner, and returns the amount
// pooled at award time. The locked self-join captures the pre-reset value
// in the same statement, so concurrent accruals cannot be lost or double-paid.
func (r *JackpotRepository) Award(ctx context.Context, winnerID int64, at time.Time) (int64, error) {
	query := `
		UPDATE casino_jackpot
		SET amount_nano = 0, last_winner_id = $1, last_won_at = $2
		FROM (SELECT amount_nano AS pooled FROM casino_jackpot WHERE id = 1 FOR UPDATE) prev
		WHERE casino_jackpot.id = 1
		RETURNING prev.pooled
	`

	var pooled int64
	err := r.q.QueryRow(ctx, query, winnerID, toUnix(at)).Scan(&pooled)
	if err != nil {
		return 0, fmt.Errorf("failed to award jackpot to user %d: %w", winnerID, err)
	}
	return pooled, nil
}

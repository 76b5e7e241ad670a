package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
	"dealer/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CasinoUserRepository implements data access for casino player aggregates
type CasinoUserRepository struct {
	q Queryable
}

// NewCasinoUserRepository creates a new casino user repository
func NewCasinoUserRepository(db *database.DB) *CasinoUserRepository {
	return &CasinoUserRepository{q: db.Pool}
}

func newCasinoUserRepositoryWithTx(tx Queryable) *CasinoUserRepository {
	return &CasinoUserRepository{q: tx}
}

// GetByUserID retrieves a player's aggregate stats, nil if the user never played
func (r *CasinoUserRepository) GetByUserID(ctx context.Context, userID int64) (*entities.CasinoUser, error) {
	query := `
		SELECT user_id, wallet_address, total_bets, total_wagered_nano,
			total_wins, total_losses, total_won_nano, last_bet_at
		FROM casino_users
		WHERE user_id = $1
	`

	var user entities.CasinoUser
	var lastBetAt *int64
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID, &user.WalletAddress, &user.TotalBets, &user.TotalWageredNano,
		&user.TotalWins, &user.TotalLosses, &user.TotalWonNano, &lastBetAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get casino user %d: %w", userID, err)
	}

	user.LastBetAt = fromUnixPtr(lastBetAt)
	return &user, nil
}

// RecordBet upserts the player row, adding the wager to their totals and
// remembering the wallet the payment came from
func (r *CasinoUserRepository) RecordBet(ctx context.Context, userID int64, walletAddress string, amountNano int64, at time.Time) error {
	query := `
		INSERT INTO casino_users (user_id, wallet_address, total_bets, total_wagered_nano,
			total_wins, total_losses, total_won_nano, last_bet_at)
		VALUES ($1, $2, 1, $3, 0, 0, 0, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			wallet_address = EXCLUDED.wallet_address,
			total_bets = casino_users.total_bets + 1,
			total_wagered_nano = casino_users.total_wagered_nano + EXCLUDED.total_wagered_nano,
			last_bet_at = EXCLUDED.last_bet_at
	`

	_, err := r.q.Exec(ctx, query, userID, walletAddress, amountNano, toUnix(at))
	if err != nil {
		return fmt.Errorf("failed to record bet for user %d: %w", userID, err)
	}
	return nil
}

// RecordWin increments win counters and the total won
func (r *CasinoUserRepository) RecordWin(ctx context.Context, userID int64, wonNano int64) error {
	query := `
		UPDATE casino_users
		SET total_wins = total_wins + 1,
			total_won_nano = total_won_nano + $2
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query, userID, wonNano)
	if err != nil {
		return fmt.Errorf("failed to record win for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.NewNotFoundError("casino user", "%d", userID)
	}
	return nil
}

// RecordLoss increments the loss counter
func (r *CasinoUserRepository) RecordLoss(ctx context.Context, userID int64) error {
	query := `
		UPDATE casino_users
		SET total_losses = total_losses + 1
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to record loss for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.NewNotFoundError("casino user", "%d", userID)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
	"dealer/domain/entities"

	"github.com/jackc/pgx/v5"
)

// UsedTransactionRepository implements the anti-replay ledger
type UsedTransactionRepository struct {
	q Queryable
}

// NewUsedTransactionRepository creates a new used-transaction repository.
// It runs on the pool, never inside a settlement transaction: a claimed
// hash must survive a later bookkeeping rollback.
func NewUsedTransactionRepository(db *database.DB) *UsedTransactionRepository {
	return &UsedTransactionRepository{q: db.Pool}
}

// TryClaim inserts the claim, relying on the primary key to resolve races:
// whoever inserts first wins, everyone else sees zero rows affected.
func (r *UsedTransactionRepository) TryClaim(ctx context.Context, used *entities.UsedTransaction) (bool, error) {
	query := `
		INSERT INTO used_transactions (tx_hash, user_id, amount_nano, settlement_kind, used_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_hash) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query,
		used.TxHash, used.UserID, used.AmountNano, used.SettlementKind, toUnix(used.UsedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim transaction %s: %w", used.TxHash, err)
	}

	return result.RowsAffected() == 1, nil
}

// GetByHash retrieves a claim record, nil if absent
func (r *UsedTransactionRepository) GetByHash(ctx context.Context, txHash string) (*entities.UsedTransaction, error) {
	query := `
		SELECT tx_hash, user_id, amount_nano, settlement_kind, used_at
		FROM used_transactions
		WHERE tx_hash = $1
	`

	var used entities.UsedTransaction
	var usedAt int64
	err := r.q.QueryRow(ctx, query, txHash).Scan(
		&used.TxHash, &used.UserID, &used.AmountNano, &used.SettlementKind, &usedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get used transaction %s: %w", txHash, err)
	}

	used.UsedAt = fromUnix(usedAt)
	return &used, nil
}

// PruneOlderThan deletes claims older than cutoff and returns the count
func (r *UsedTransactionRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM used_transactions WHERE used_at < $1`

	result, err := r.q.Exec(ctx, query, toUnix(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune used transactions: %w", err)
	}
	return result.RowsAffected(), nil
}

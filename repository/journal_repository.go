package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
	"dealer/domain/entities"

	"github.com/jackc/pgx/v5"
)

const journalColumns = `id, ts, kind, action, asset_from, asset_to, amount_from_nano, amount_to_nano,
	outcome, pnl_nano, tx_hash, payout_ref, tool_used, chat_id, user_id, closed_at`

// JournalRepository implements the append-only audit ledger
type JournalRepository struct {
	q Queryable
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *database.DB) *JournalRepository {
	return &JournalRepository{q: db.Pool}
}

func newJournalRepositoryWithTx(tx Queryable) *JournalRepository {
	return &JournalRepository{q: tx}
}

// Create appends a new entry and sets its ID
func (r *JournalRepository) Create(ctx context.Context, entry *entities.JournalEntry) error {
	query := `
		INSERT INTO journal (ts, kind, action, asset_from, asset_to, amount_from_nano, amount_to_nano,
			outcome, pnl_nano, tx_hash, payout_ref, tool_used, chat_id, user_id, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		toUnix(entry.Timestamp), entry.Kind, entry.Action,
		entry.AssetFrom, entry.AssetTo, entry.AmountFromNano, entry.AmountToNano,
		entry.Outcome, entry.PnLNano, entry.TxHash, entry.PayoutRef,
		entry.ToolUsed, entry.ChatID, entry.UserID, toUnixPtr(entry.ClosedAt),
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry, nil if absent
func (r *JournalRepository) GetByID(ctx context.Context, id int64) (*entities.JournalEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM journal WHERE id = $1`, journalColumns)

	entry, err := scanJournalEntry(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry %d: %w", id, err)
	}
	return entry, nil
}

// Close moves a pending entry to a terminal outcome. The outcome guard in
// the WHERE clause means an entry closes at most once: a second close,
// whatever its outcome, affects zero rows and reports a conflict.
func (r *JournalRepository) Close(ctx context.Context, id int64, outcome entities.JournalOutcome, pnlNano int64, payoutRef *string, closedAt time.Time) error {
	query := `
		UPDATE journal
		SET outcome = $2, pnl_nano = $3, payout_ref = COALESCE($4, payout_ref), closed_at = $5
		WHERE id = $1 AND outcome = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, outcome, pnlNano, payoutRef, toUnix(closedAt))
	if err != nil {
		return fmt.Errorf("failed to close journal entry %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return entities.NewConflictError("journal entry %d is not pending", id)
	}
	return nil
}

// ListPendingOlderThan returns pending entries created before cutoff,
// oldest first. This is the operator reconciliation backlog.
func (r *JournalRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entities.JournalEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM journal
		WHERE outcome = 'pending' AND ts < $1
		ORDER BY ts ASC
	`, journalColumns)

	rows, err := r.q.Query(ctx, query, toUnix(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanJournalEntry(row pgx.Row) (*entities.JournalEntry, error) {
	var entry entities.JournalEntry
	var ts int64
	var closedAt *int64

	err := row.Scan(
		&entry.ID, &ts, &entry.Kind, &entry.Action,
		&entry.AssetFrom, &entry.AssetTo, &entry.AmountFromNano, &entry.AmountToNano,
		&entry.Outcome, &entry.PnLNano, &entry.TxHash, &entry.PayoutRef,
		&entry.ToolUsed, &entry.ChatID, &entry.UserID, &closedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry.Timestamp = fromUnix(ts)
	entry.ClosedAt = fromUnixPtr(closedAt)
	return &entry, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"dealer/database"
	"dealer/domain/entities"

	"github.com/jackc/pgx/v5"
)

const dealColumns = `
	id, status, user_id, chat_id,
	user_gives_kind, user_gives_amount_nano, user_gives_gift_ref, user_gives_value_nano,
	agent_gives_kind, agent_gives_amount_nano, agent_gives_gift_ref, agent_gives_value_nano,
	user_payment_verified_at, user_payment_tx_hash, user_wallet_address,
	agent_sent_at, agent_sent_tx_hash,
	profit_estimate_nano, created_at, expires_at, completed_at,
	inline_message_ref, notes`

// DealRepository implements deal data access
type DealRepository struct {
	q Queryable
}

// NewDealRepository creates a new deal repository on the pool
func NewDealRepository(db *database.DB) *DealRepository {
	return &DealRepository{q: db.Pool}
}

// newDealRepositoryWithTx creates a new deal repository with a transaction
func newDealRepositoryWithTx(tx Queryable) *DealRepository {
	return &DealRepository{q: tx}
}

// Create persists a new deal
func (r *DealRepository) Create(ctx context.Context, deal *entities.Deal) error {
	query := `
		INSERT INTO deals (` + dealColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.q.Exec(ctx, query,
		deal.ID, deal.Status, deal.UserID, deal.ChatID,
		deal.UserGives.Kind, deal.UserGives.AmountNano, deal.UserGives.GiftRef, deal.UserGives.ValueNano,
		deal.AgentGives.Kind, deal.AgentGives.AmountNano, deal.AgentGives.GiftRef, deal.AgentGives.ValueNano,
		toUnixPtr(deal.UserPaymentVerifiedAt), deal.UserPaymentTxHash, deal.UserWalletAddress,
		toUnixPtr(deal.AgentSentAt), deal.AgentSentTxHash,
		deal.ProfitEstimateNano, toUnix(deal.CreatedAt), toUnix(deal.ExpiresAt), toUnixPtr(deal.CompletedAt),
		deal.InlineMessageRef, deal.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create deal %s: %w", deal.ID, err)
	}

	return nil
}

// GetByID retrieves a deal by its identifier
func (r *DealRepository) GetByID(ctx context.Context, id string) (*entities.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	deal, err := scanDeal(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get deal %s: %w", id, err)
	}
	return deal, nil
}

// Update persists a deal's mutable columns. The write lands only if the
// stored status still equals from; a concurrent transition wins the row and
// this call reports ConflictError, so a terminal status can never be
// overwritten by a stale reader.
func (r *DealRepository) Update(ctx context.Context, deal *entities.Deal, from entities.DealStatus) error {
	query := `
		UPDATE deals
		SET status = $2,
		    user_payment_verified_at = $3,
		    user_payment_tx_hash = $4,
		    user_wallet_address = $5,
		    agent_sent_at = $6,
		    agent_sent_tx_hash = $7,
		    expires_at = $8,
		    completed_at = $9,
		    inline_message_ref = $10,
		    notes = $11
		WHERE id = $1
		  AND status = $12
	`

	result, err := r.q.Exec(ctx, query,
		deal.ID,
		deal.Status,
		toUnixPtr(deal.UserPaymentVerifiedAt),
		deal.UserPaymentTxHash,
		deal.UserWalletAddress,
		toUnixPtr(deal.AgentSentAt),
		deal.AgentSentTxHash,
		toUnix(deal.ExpiresAt),
		toUnixPtr(deal.CompletedAt),
		deal.InlineMessageRef,
		deal.Notes,
		from,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal %s: %w", deal.ID, err)
	}
	if result.RowsAffected() == 0 {
		return entities.NewConflictError("deal %s is no longer in status %s", deal.ID, from)
	}

	return nil
}

// ListByStatus returns deals in a given status, oldest first
func (r *DealRepository) ListByStatus(ctx context.Context, status entities.DealStatus, limit int) ([]*entities.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE status = $1 ORDER BY created_at ASC LIMIT $2`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectDeals(rows)
}

// ListByUser returns a user's deals, newest first
func (r *DealRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectDeals(rows)
}

// ExpireOverdue moves every overdue proposed/accepted deal to expired in a
// single conditional statement. Safe to run concurrently with itself.
func (r *DealRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE deals
		SET status = 'expired'
		WHERE status IN ('proposed', 'accepted')
		  AND expires_at < $1
	`

	result, err := r.q.Exec(ctx, query, toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue deals: %w", err)
	}
	return result.RowsAffected(), nil
}

// ClaimAgentSend conditionally stamps agent_sent_at on a verified deal that
// has not sent yet; exactly one concurrent caller wins
func (r *DealRepository) ClaimAgentSend(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE deals
		SET agent_sent_at = $2
		WHERE id = $1
		  AND status = 'verified'
		  AND agent_sent_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, id, toUnix(at))
	if err != nil {
		return false, fmt.Errorf("failed to claim agent send for deal %s: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// GetVerifiedForAsset returns a verified, recently verified, not-yet-sent
// deal for the asset and user, nil when no such deal exists
func (r *DealRepository) GetVerifiedForAsset(ctx context.Context, assetRef string, userID int64, verifiedAfter time.Time) (*entities.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE status = 'verified'
		  AND agent_gives_gift_ref = $1
		  AND user_id = $2
		  AND user_payment_verified_at > $3
		  AND agent_sent_at IS NULL
		ORDER BY user_payment_verified_at DESC
		LIMIT 1
	`

	deal, err := scanDeal(r.q.QueryRow(ctx, query, assetRef, userID, toUnix(verifiedAfter)))
	if err != nil {
		return nil, fmt.Errorf("failed to query verified deal for asset %s: %w", assetRef, err)
	}
	return deal, nil
}

func scanDeal(row pgx.Row) (*entities.Deal, error) {
	var deal entities.Deal
	var verifiedAt, sentAt, completedAt *int64
	var createdAt, expiresAt int64

	err := row.Scan(
		&deal.ID, &deal.Status, &deal.UserID, &deal.ChatID,
		&deal.UserGives.Kind, &deal.UserGives.AmountNano, &deal.UserGives.GiftRef, &deal.UserGives.ValueNano,
		&deal.AgentGives.Kind, &deal.AgentGives.AmountNano, &deal.AgentGives.GiftRef, &deal.AgentGives.ValueNano,
		&verifiedAt, &deal.UserPaymentTxHash, &deal.UserWalletAddress,
		&sentAt, &deal.AgentSentTxHash,
		&deal.ProfitEstimateNano, &createdAt, &expiresAt, &completedAt,
		&deal.InlineMessageRef, &deal.Notes,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	deal.UserPaymentVerifiedAt = fromUnixPtr(verifiedAt)
	deal.AgentSentAt = fromUnixPtr(sentAt)
	deal.CompletedAt = fromUnixPtr(completedAt)
	deal.CreatedAt = fromUnix(createdAt)
	deal.ExpiresAt = fromUnix(expiresAt)

	return &deal, nil
}

func collectDeals(rows pgx.Rows) ([]*entities.Deal, error) {
	var deals []*entities.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deals: %w", err)
	}
	return deals, nil
}

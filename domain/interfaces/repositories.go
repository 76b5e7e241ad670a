package interfaces

import (
	"context"
	"time"

	"dealer/domain/entities"
)

// DealRepository defines the interface for deal data access
type DealRepository interface {
	// Create persists a new deal
	Create(ctx context.Context, deal *entities.Deal) error

	// GetByID retrieves a deal by its identifier
	GetByID(ctx context.Context, id string) (*entities.Deal, error)

	// Update persists a deal's mutable columns, guarded on the status the
	// caller read. Zero rows matched means a concurrent transition won and
	// the call reports ConflictError.
	Update(ctx context.Context, deal *entities.Deal, from entities.DealStatus) error

	// ListByStatus returns deals in a given status, oldest first
	ListByStatus(ctx context.Context, status entities.DealStatus, limit int) ([]*entities.Deal, error)

	// ListByUser returns a user's deals, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Deal, error)

	// ExpireOverdue moves all proposed/accepted deals whose expiry has
	// passed to expired in one conditional statement and returns the count
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	// ClaimAgentSend conditionally stamps agent_sent_at on a verified deal
	// that has not sent yet. Exactly one concurrent caller wins; the return
	// reports whether this call did.
	ClaimAgentSend(ctx context.Context, id string, at time.Time) (bool, error)

	// GetVerifiedForAsset returns a verified deal for the asset and user
	// whose verification happened after verifiedAfter and whose agent side
	// has not been sent yet. Returns nil when no such deal exists.
	GetVerifiedForAsset(ctx context.Context, assetRef string, userID int64, verifiedAfter time.Time) (*entities.Deal, error)
}

// UsedTransactionRepository is the anti-replay ledger. Claiming is an
// insert racing on the primary key, never a read followed by a write.
type UsedTransactionRepository interface {
	// TryClaim inserts the record and reports whether this call won the
	// claim. false means another verification already consumed the hash.
	TryClaim(ctx context.Context, used *entities.UsedTransaction) (bool, error)

	// GetByHash retrieves a claim record, nil if absent
	GetByHash(ctx context.Context, txHash string) (*entities.UsedTransaction, error)

	// PruneOlderThan deletes claims older than cutoff and returns the count
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CasinoUserRepository defines the interface for per-player aggregates
type CasinoUserRepository interface {
	// GetByUserID retrieves a player aggregate, nil if the user never bet
	GetByUserID(ctx context.Context, userID int64) (*entities.CasinoUser, error)

	// RecordBet upserts the aggregate for a settled bet: bumps bet counters,
	// wagered total, last bet time and the last observed sender wallet
	RecordBet(ctx context.Context, userID int64, walletAddress string, amountNano int64, at time.Time) error

	// RecordWin increments win counters and the total won
	RecordWin(ctx context.Context, userID int64, wonNano int64) error

	// RecordLoss increments the loss counter
	RecordLoss(ctx context.Context, userID int64) error
}

// CooldownRepository enforces the minimum inter-bet interval
type CooldownRepository interface {
	// CheckAndSet atomically checks the user's cooldown and, if the window
	// has passed, stamps now. Exactly one of N concurrent calls within the
	// window observes allowed=true.
	CheckAndSet(ctx context.Context, userID int64, window time.Duration, now time.Time) (bool, error)
}

// JackpotRepository manages the singleton pooled jackpot row
type JackpotRepository interface {
	// Get returns the current jackpot state
	Get(ctx context.Context) (*entities.Jackpot, error)

	// Accrue adds amountNano to the pool
	Accrue(ctx context.Context, amountNano int64) error

	// Award resets the pool to zero, stamping the winner, and returns the
	// amount that was pooled at award time
	Award(ctx context.Context, winnerID int64, at time.Time) (int64, error)
}

// JournalRepository defines the interface for the append-only audit ledger
type JournalRepository interface {
	// Create appends a new entry (normally pending) and sets its ID
	Create(ctx context.Context, entry *entities.JournalEntry) error

	// GetByID retrieves an entry, nil if absent
	GetByID(ctx context.Context, id int64) (*entities.JournalEntry, error)

	// Close moves a pending entry to a terminal outcome exactly once,
	// optionally recording the outgoing payout reference. Closing a
	// non-pending entry is a ConflictError.
	Close(ctx context.Context, id int64, outcome entities.JournalOutcome, pnlNano int64, payoutRef *string, closedAt time.Time) error

	// ListPendingOlderThan returns pending entries created before cutoff,
	// the operator reconciliation backlog
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*entities.JournalEntry, error)
}

package interfaces

import (
	"context"
	"time"

	"dealer/domain/entities"
)

// ChainClient is the narrow blockchain capability the engine depends on.
// Implementations are expected to be wrapped with retry/timeout handling so
// failures surface as ChainUnavailableError.
type ChainClient interface {
	// GetIncomingTransactions returns the most recent incoming transfers to
	// address, newest first
	GetIncomingTransactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error)

	// SendTransfer sends amountNano to toAddress with an attached text note
	SendTransfer(ctx context.Context, toAddress string, amountNano int64, note string) (*entities.TransferReceipt, error)

	// GetBalance returns the current balance of address in nanotons
	GetBalance(ctx context.Context, address string) (int64, error)
}

// DiceRoller triggers the externally-visible randomness source (an animated
// dice or slot primitive). A duplicate trigger duplicates the animation, so
// callers must never retry a failed roll.
type DiceRoller interface {
	Roll(ctx context.Context, chatID int64, kind entities.GameKind) (int, error)
}

// Notifier pushes state changes to the messaging layer. The engine does not
// depend on which rendering path succeeds; a logging fallback is always
// available.
type Notifier interface {
	NotifyDealUpdate(ctx context.Context, deal *entities.Deal) error
}

// ExpectedPayment describes the payment a settlement is waiting for
type ExpectedPayment struct {
	DestinationAddress string
	MinAmountNano      int64
	NotBefore          time.Time
	MaxAge             time.Duration
	IdentityMemo       string
	SettlementKind     string
	UserID             int64
}

// PaymentVerifier matches an expected payment against recent chain
// transactions and durably claims the matched hash
type PaymentVerifier interface {
	// VerifyPayment returns the claimed payment, a NotFoundError with a
	// user-facing checklist when nothing matches, or a
	// ChainUnavailableError on transport failure
	VerifyPayment(ctx context.Context, expected ExpectedPayment) (*entities.VerifiedPayment, error)
}

// ProposeDealInput carries the validated parameters of a deal proposal
type ProposeDealInput struct {
	UserID             int64
	ChatID             int64
	UserGives          entities.DealSide
	AgentGives         entities.DealSide
	ProfitEstimateNano int64
	InlineMessageRef   *string
	Notes              *string
}

// DealFilter narrows a deal listing
type DealFilter struct {
	Status *entities.DealStatus
	UserID *int64
	Limit  int
}

// DealService drives the escrow state machine
type DealService interface {
	ProposeDeal(ctx context.Context, input ProposeDealInput) (*entities.Deal, error)
	AcceptDeal(ctx context.Context, id string) (*entities.Deal, error)
	DeclineDeal(ctx context.Context, id string) (*entities.Deal, error)
	ClaimPayment(ctx context.Context, id string) (*entities.Deal, error)
	CancelDeal(ctx context.Context, id string, reason string) (*entities.Deal, error)

	// CompleteDeal sends the agent's TON side of a verified deal back to
	// the payment sender and moves the deal to completed
	CompleteDeal(ctx context.Context, id string) (*entities.Deal, error)

	// MarkAgentSent records that an external transfer tool released the
	// agent's side (e.g. a gift) and moves a verified deal to completed
	MarkAgentSent(ctx context.Context, id string, txRef string) (*entities.Deal, error)

	// MarkUserGiftReceived records that an external transfer tool confirmed
	// receipt of the user's gift side and moves a payment_claimed deal to
	// verified. Gift sides never appear on chain, so this attestation is
	// their only verification path.
	MarkUserGiftReceived(ctx context.Context, id string, transferRef string) (*entities.Deal, error)

	GetDeal(ctx context.Context, id string) (*entities.Deal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]*entities.Deal, error)

	// HasVerifiedDeal is the sole authorization gate for releasing the
	// agent's side of an asset
	HasVerifiedDeal(ctx context.Context, assetRef string, userID int64) (bool, error)

	// PollPendingVerifications attempts verification of every
	// payment_claimed deal and returns the ids that became verified
	PollPendingVerifications(ctx context.Context) ([]string, error)

	// ExpireOverdueDeals sweeps overdue proposed/accepted deals to expired
	ExpireOverdueDeals(ctx context.Context) (int64, error)
}

// WagerRequest is a validated casino bet
type WagerRequest struct {
	UserID             int64
	ChatID             int64
	Username           string // payment memo identity; empty means anonymous
	AmountNano         int64
	DestinationAddress string // house wallet the payment was sent to
	Game               entities.GameKind
}

// WagerOutcome reports a settled wager with all audit identifiers
type WagerOutcome struct {
	Game           entities.GameKind
	Value          int
	Description    string
	Multiplier     float64
	Won            bool
	PayoutNano     int64
	JackpotWonNano int64
	PayoutSent     bool
	PayoutRef      string
	PaymentTxHash  string
	JournalID      int64

	// NeedsReconciliation is set when the wager won but the payout transfer
	// failed after retries; the journal entry stays pending for an operator
	NeedsReconciliation bool
}

// CasinoService settles house-vs-player wagers
type CasinoService interface {
	SettleWager(ctx context.Context, bet WagerRequest) (*WagerOutcome, error)
	GetPlayerStats(ctx context.Context, userID int64) (*entities.CasinoUser, error)
	GetJackpot(ctx context.Context) (*entities.Jackpot, error)
}
